package registration

import (
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
	"github.com/frahmantamala/ngo-platform/internal/storage"
)

const (
	TokenPurpose = "ngo-registration"
	FormPath     = "/register/form"
)

var Categories = []string{
	"Education",
	"Health",
	"Environment",
	"Poverty",
	"Arts",
	"Animal Welfare",
	"Other",
}

type Application struct {
	ID                       int64     `json:"id"`
	Name                     string    `json:"name"`
	Category                 string    `json:"category"`
	Mission                  string    `json:"mission"`
	Website                  *string   `json:"website,omitempty"`
	ContactEmail             string    `json:"contact_email"`
	RegistrationDocumentPath *string   `json:"registration_document_path,omitempty"`
	FinancialReportPath      *string   `json:"financial_report_path,omitempty"`
	SubmittedAt              time.Time `json:"submitted_at"`
}

// Documents holds the optional uploads of an application form.
type Documents struct {
	RegistrationDocument *storage.Upload
	FinancialReport      *storage.Upload
}

type LinkResult struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type FormInfo struct {
	Email      string   `json:"email"`
	Categories []string `json:"categories"`
}

var (
	ErrApplicationAlreadyPending = errors.NewConflictError("An application with this email address is already pending review", errors.ErrCodeApplicationAlreadyPending)
	ErrRegistrationLinkNotSent   = errors.NewExternalError("Registration link could not be sent. Please try again later", errors.ErrCodeRegistrationLinkNotSent)
	ErrTokenInvalid              = errors.ErrInvalidToken.WithMessage("The registration link is invalid")
	ErrTokenExpired              = errors.ErrTokenExpired.WithMessage("The registration link has expired. Please request a new one")
)

func FromDataModel(a *organization.PendingApplication) *Application {
	return &Application{
		ID:                       a.ID,
		Name:                     a.Name,
		Category:                 a.Category,
		Mission:                  a.Mission,
		Website:                  a.Website,
		ContactEmail:             a.ContactEmail,
		RegistrationDocumentPath: a.RegistrationDocumentPath,
		FinancialReportPath:      a.FinancialReportPath,
		SubmittedAt:              a.SubmittedAt,
	}
}
