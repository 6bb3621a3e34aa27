package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/ngo-platform/internal/core/database"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
	"github.com/frahmantamala/ngo-platform/internal/moderation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModerationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) moderation.Repository {
	return &ModerationRepository{db: db}
}

func (r *ModerationRepository) ListPending(ctx context.Context) ([]*organization.PendingApplication, error) {
	var apps []*organization.PendingApplication
	err := r.db.WithContext(ctx).Order("submitted_at ASC").Find(&apps).Error
	return apps, err
}

func (r *ModerationRepository) ListVerified(ctx context.Context) ([]*organization.VerifiedOrganization, error) {
	var orgs []*organization.VerifiedOrganization
	err := r.db.WithContext(ctx).Order("approved_at DESC").Find(&orgs).Error
	return orgs, err
}

func (r *ModerationRepository) ListRejected(ctx context.Context) ([]*organization.RejectedApplication, error) {
	var apps []*organization.RejectedApplication
	err := r.db.WithContext(ctx).Order("rejected_at DESC").Find(&apps).Error
	return apps, err
}

func (r *ModerationRepository) Approve(ctx context.Context, pendingID int64, approvedAt time.Time) (*organization.VerifiedOrganization, error) {
	var verified *organization.VerifiedOrganization

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := lockPending(tx, pendingID)
		if err != nil {
			return err
		}

		verified = &organization.VerifiedOrganization{
			Name:         pending.Name,
			Category:     pending.Category,
			Mission:      pending.Mission,
			Website:      pending.Website,
			ContactEmail: pending.ContactEmail,
			IsActive:     true,
			ApprovedAt:   approvedAt,
		}
		if err := tx.Create(verified).Error; err != nil {
			return insertError(err)
		}

		return deleteOne(tx, &organization.PendingApplication{}, pendingID)
	})
	if err != nil {
		return nil, err
	}
	return verified, nil
}

func (r *ModerationRepository) Reject(ctx context.Context, pendingID, adminID int64, reason string, rejectedAt time.Time) (*organization.RejectedApplication, error) {
	var rejected *organization.RejectedApplication

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := lockPending(tx, pendingID)
		if err != nil {
			return err
		}

		rejected = &organization.RejectedApplication{
			Name:                     pending.Name,
			Category:                 pending.Category,
			Mission:                  pending.Mission,
			Website:                  pending.Website,
			ContactEmail:             pending.ContactEmail,
			RegistrationDocumentPath: pending.RegistrationDocumentPath,
			FinancialReportPath:      pending.FinancialReportPath,
			RejectedAt:               rejectedAt,
			RejectedByAdminID:        &adminID,
			RejectionReason:          reason,
		}
		if err := tx.Create(rejected).Error; err != nil {
			return insertError(err)
		}

		return deleteOne(tx, &organization.PendingApplication{}, pendingID)
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (r *ModerationRepository) Restore(ctx context.Context, rejectedID int64, submittedAt time.Time) (*organization.PendingApplication, error) {
	var pending *organization.PendingApplication

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rejected organization.RejectedApplication
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", rejectedID).
			First(&rejected).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return moderation.ErrApplicationNotFound
			}
			return err
		}

		pending = &organization.PendingApplication{
			Name:                     rejected.Name,
			Category:                 rejected.Category,
			Mission:                  rejected.Mission,
			Website:                  rejected.Website,
			ContactEmail:             rejected.ContactEmail,
			RegistrationDocumentPath: rejected.RegistrationDocumentPath,
			FinancialReportPath:      rejected.FinancialReportPath,
			SubmittedAt:              submittedAt,
		}
		if err := tx.Create(pending).Error; err != nil {
			return insertError(err)
		}

		return deleteOne(tx, &organization.RejectedApplication{}, rejectedID)
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func lockPending(tx *gorm.DB, id int64) (*organization.PendingApplication, error) {
	var pending organization.PendingApplication
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, moderation.ErrApplicationNotFound
		}
		return nil, err
	}
	return &pending, nil
}

// deleteOne removes the source row of a move. Losing a concurrent move shows
// up here as zero affected rows.
func deleteOne(tx *gorm.DB, model interface{}, id int64) error {
	result := tx.Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return moderation.ErrApplicationNotFound
	}
	return nil
}

func insertError(err error) error {
	if database.IsUniqueViolation(err) {
		return moderation.ErrOrganizationConflict.WithCause(err)
	}
	return err
}
