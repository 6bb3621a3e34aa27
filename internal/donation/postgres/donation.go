package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/ngo-platform/internal/core/database"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/payment"
	"github.com/frahmantamala/ngo-platform/internal/donation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errStatusChanged = errors.New("payment status changed concurrently")

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) donation.Repository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) GetOrganization(ctx context.Context, id int64) (*organization.VerifiedOrganization, error) {
	var org organization.VerifiedOrganization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, donation.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *DonationRepository) CreateCheckout(ctx context.Context, p *payment.Payment, open donation.OpenSessionFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return donation.ErrIntentAlreadyUsed.WithCause(err)
			}
			return err
		}

		sessionID, err := open(p)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		result := tx.Model(&payment.Payment{}).
			Where("id = ? AND status = ?", p.ID, payment.StatusPendingInitiation).
			Updates(map[string]interface{}{
				"gateway_session_id": sessionID,
				"status":             payment.StatusPending,
				"updated_at":         now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("attach session to payment %d: %w", p.ID, errStatusChanged)
		}

		p.GatewaySessionID = &sessionID
		p.Status = payment.StatusPending
		p.UpdatedAt = now
		return nil
	})
}

func (r *DonationRepository) GetBySessionID(ctx context.Context, sessionID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Preload("Success").
		Preload("Failure").
		Where("gateway_session_id = ?", sessionID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, donation.ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *DonationRepository) Settle(ctx context.Context, paymentID int64, s donation.Settlement) (*payment.Payment, bool, error) {
	applied := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p payment.Payment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", paymentID).
			First(&p).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return donation.ErrPaymentNotFound
			}
			return err
		}
		if p.IsTerminal() {
			return nil
		}

		switch s.Outcome {
		case donation.OutcomeSuccess:
			if err := tx.Create(&payment.SuccessfulPayment{
				PaymentID:       p.ID,
				GatewayChargeID: s.ChargeID,
				ReceiptURL:      s.ReceiptURL,
				ConfirmedAt:     s.At,
			}).Error; err != nil {
				return err
			}
			if err := transition(tx, p.ID, payment.StatusSuccess, payment.KindSuccess, s.At); err != nil {
				return err
			}
			if err := tx.Model(&organization.VerifiedOrganization{}).
				Where("id = ?", p.OrganizationID).
				Update("total_donations_cents", gorm.Expr("total_donations_cents + ?", p.AmountCents)).Error; err != nil {
				return err
			}
		case donation.OutcomeFailure:
			if err := tx.Create(&payment.FailedPayment{
				PaymentID:        p.ID,
				ErrorMessage:     donation.FailureReason,
				GatewayErrorCode: s.ErrorCode,
				FailedAt:         s.At,
			}).Error; err != nil {
				return err
			}
			if err := transition(tx, p.ID, payment.StatusFailed, payment.KindFailure, s.At); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown outcome %q", s.Outcome)
		}

		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	settled, err := r.getByID(ctx, paymentID)
	if err != nil {
		return nil, false, err
	}
	return settled, applied, nil
}

func (r *DonationRepository) ListStalePending(ctx context.Context, updatedBefore time.Time, limit int) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", payment.StatusPending, updatedBefore).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&payments).Error
	return payments, err
}

func (r *DonationRepository) getByID(ctx context.Context, id int64) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).
		Preload("Success").
		Preload("Failure").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// transition moves a PENDING payment to a terminal status. Zero affected rows
// means another writer got there first, which rolls the whole settlement back.
func transition(tx *gorm.DB, id int64, status, kind string, at time.Time) error {
	result := tx.Model(&payment.Payment{}).
		Where("id = ? AND status = ?", id, payment.StatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"kind":       kind,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("settle payment %d: %w", id, errStatusChanged)
	}
	return nil
}
