package moderation

import (
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
)

// DefaultRejectionReason is recorded when an administrator gives none.
const DefaultRejectionReason = "Manual rejection by admin."

type Organization struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Category            string    `json:"category"`
	Mission             string    `json:"mission"`
	Website             *string   `json:"website,omitempty"`
	ContactEmail        string    `json:"contact_email"`
	ContactPhone        string    `json:"contact_phone"`
	Location            string    `json:"location"`
	IsActive            bool      `json:"is_active"`
	TotalDonationsCents int64     `json:"total_donations_cents"`
	ApprovedAt          time.Time `json:"approved_at"`
}

type PendingApplication struct {
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

type RejectedApplication struct {
	ID                       int64     `json:"id"`
	Name                     string    `json:"name"`
	Category                 string    `json:"category"`
	Mission                  string    `json:"mission"`
	Website                  *string   `json:"website,omitempty"`
	ContactEmail             string    `json:"contact_email"`
	RegistrationDocumentPath *string   `json:"registration_document_path,omitempty"`
	FinancialReportPath      *string   `json:"financial_report_path,omitempty"`
	RejectedAt               time.Time `json:"rejected_at"`
	RejectedByAdminID        *int64    `json:"rejected_by_admin_id,omitempty"`
	RejectionReason          string    `json:"rejection_reason"`
}

var (
	ErrApplicationNotFound  = errors.NewNotFoundError("Application not found", errors.ErrCodeApplicationNotFound)
	ErrOrganizationConflict = errors.NewConflictError("An organization with this name or contact email is already verified", errors.ErrCodeOrganizationConflict)
)

func OrganizationFromDataModel(o *organization.VerifiedOrganization) *Organization {
	return &Organization{
		ID:                  o.ID,
		Name:                o.Name,
		Category:            o.Category,
		Mission:             o.Mission,
		Website:             o.Website,
		ContactEmail:        o.ContactEmail,
		ContactPhone:        o.ContactPhone,
		Location:            o.Location,
		IsActive:            o.IsActive,
		TotalDonationsCents: o.TotalDonationsCents,
		ApprovedAt:          o.ApprovedAt,
	}
}

func PendingFromDataModel(a *organization.PendingApplication) *PendingApplication {
	return &PendingApplication{
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

func RejectedFromDataModel(a *organization.RejectedApplication) *RejectedApplication {
	return &RejectedApplication{
		ID:                       a.ID,
		Name:                     a.Name,
		Category:                 a.Category,
		Mission:                  a.Mission,
		Website:                  a.Website,
		ContactEmail:             a.ContactEmail,
		RegistrationDocumentPath: a.RegistrationDocumentPath,
		FinancialReportPath:      a.FinancialReportPath,
		RejectedAt:               a.RejectedAt,
		RejectedByAdminID:        a.RejectedByAdminID,
		RejectionReason:          a.RejectionReason,
	}
}

func mapSlice[T, U any](in []*T, fn func(*T) *U) []*U {
	out := make([]*U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
