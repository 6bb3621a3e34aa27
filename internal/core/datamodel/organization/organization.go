package organization

import "time"

// RegistrationDocumentPlaceholder is stored when the registration document could not be persisted.
const RegistrationDocumentPlaceholder = "N/A (File Optional)"

type PendingApplication struct {
	ID                       int64     `gorm:"primaryKey"`
	Name                     string    `gorm:"column:name;not null"`
	Category                 string    `gorm:"column:category;not null"`
	Mission                  string    `gorm:"column:mission;not null"`
	Website                  *string   `gorm:"column:website"`
	ContactEmail             string    `gorm:"column:contact_email;not null;index"`
	RegistrationDocumentPath *string   `gorm:"column:registration_document_path"`
	FinancialReportPath      *string   `gorm:"column:financial_report_path"`
	SubmittedAt              time.Time `gorm:"column:submitted_at;not null"`
}

func (PendingApplication) TableName() string { return "pending_applications" }

type VerifiedOrganization struct {
	ID                  int64     `gorm:"primaryKey"`
	Name                string    `gorm:"column:name;not null;uniqueIndex"`
	Category            string    `gorm:"column:category;not null"`
	Mission             string    `gorm:"column:mission;not null"`
	Website             *string   `gorm:"column:website"`
	ContactEmail        string    `gorm:"column:contact_email;not null;uniqueIndex"`
	ContactPhone        string    `gorm:"column:contact_phone;not null;default:''"`
	Location            string    `gorm:"column:location;not null;default:''"`
	IsActive            bool      `gorm:"column:is_active;not null;default:true"`
	TotalDonationsCents int64     `gorm:"column:total_donations_cents;not null;default:0"`
	ApprovedAt          time.Time `gorm:"column:approved_at;not null"`
}

func (VerifiedOrganization) TableName() string { return "verified_organizations" }

type RejectedApplication struct {
	ID                       int64     `gorm:"primaryKey"`
	Name                     string    `gorm:"column:name;not null"`
	Category                 string    `gorm:"column:category;not null"`
	Mission                  string    `gorm:"column:mission;not null"`
	Website                  *string   `gorm:"column:website"`
	ContactEmail             string    `gorm:"column:contact_email;not null;index"`
	RegistrationDocumentPath *string   `gorm:"column:registration_document_path"`
	FinancialReportPath      *string   `gorm:"column:financial_report_path"`
	RejectedAt               time.Time `gorm:"column:rejected_at;not null"`
	RejectedByAdminID        *int64    `gorm:"column:rejected_by_admin_id"`
	RejectionReason          string    `gorm:"column:rejection_reason;not null"`
}

func (RejectedApplication) TableName() string { return "rejected_applications" }
