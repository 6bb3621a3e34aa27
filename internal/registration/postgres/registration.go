package postgres

import (
	"context"

	"github.com/frahmantamala/ngo-platform/internal/core/database"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
	"github.com/frahmantamala/ngo-platform/internal/registration"
	"gorm.io/gorm"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) registration.Repository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) HasPending(ctx context.Context, email string) (bool, error) {
	return hasPending(r.db.WithContext(ctx), email)
}

// CreatePending inserts app unless its contact email already has a pending
// application. The check and the insert share one transaction.
func (r *RegistrationRepository) CreatePending(ctx context.Context, app *organization.PendingApplication) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pending, err := hasPending(tx, app.ContactEmail)
		if err != nil {
			return err
		}
		if pending {
			return registration.ErrApplicationAlreadyPending
		}
		return tx.Create(app).Error
	})
	if database.IsUniqueViolation(err) {
		return registration.ErrApplicationAlreadyPending.WithCause(err)
	}
	return err
}

func hasPending(db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.Model(&organization.PendingApplication{}).
		Where("LOWER(contact_email) = LOWER(?)", email).
		Count(&count).Error
	return count > 0, err
}
