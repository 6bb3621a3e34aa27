package payment

import "time"

const (
	StatusPendingInitiation = "PENDING_INITIATION"
	StatusPending           = "PENDING"
	StatusSuccess           = "SUCCESS"
	StatusFailed            = "FAILED"
)

// Kind discriminates which specialization row, if any, belongs to a payment.
const (
	KindPayment = "payment"
	KindSuccess = "success"
	KindFailure = "failure"
)

type Payment struct {
	ID               int64              `gorm:"primaryKey"`
	DonorID          *int64             `gorm:"column:donor_id"`
	OrganizationID   int64              `gorm:"column:organization_id;not null;index"`
	IntentID         string             `gorm:"column:intent_id;not null;uniqueIndex"`
	DonorName        *string            `gorm:"column:donor_name"`
	DonorEmail       string             `gorm:"column:donor_email;not null"`
	AmountCents      int64              `gorm:"column:amount_cents;not null"`
	Currency         string             `gorm:"column:currency;not null;default:usd"`
	GatewaySessionID *string            `gorm:"column:gateway_session_id;uniqueIndex"`
	Status           string             `gorm:"column:status;not null;default:PENDING_INITIATION"`
	Kind             string             `gorm:"column:kind;not null;default:payment"`
	CreatedAt        time.Time          `gorm:"column:created_at"`
	UpdatedAt        time.Time          `gorm:"column:updated_at"`
	Success          *SuccessfulPayment `gorm:"foreignKey:PaymentID"`
	Failure          *FailedPayment     `gorm:"foreignKey:PaymentID"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) IsTerminal() bool {
	return p.Status == StatusSuccess || p.Status == StatusFailed
}

// SuccessfulPayment is keyed by payment_id so a payment can own at most one.
type SuccessfulPayment struct {
	PaymentID       int64     `gorm:"column:payment_id;primaryKey;autoIncrement:false"`
	GatewayChargeID string    `gorm:"column:gateway_charge_id;not null;uniqueIndex"`
	ReceiptURL      *string   `gorm:"column:receipt_url"`
	ConfirmedAt     time.Time `gorm:"column:confirmed_at;not null"`
}

func (SuccessfulPayment) TableName() string { return "successful_payments" }

type FailedPayment struct {
	PaymentID        int64     `gorm:"column:payment_id;primaryKey;autoIncrement:false"`
	ErrorMessage     string    `gorm:"column:error_message;not null"`
	GatewayErrorCode *string   `gorm:"column:gateway_error_code"`
	FailedAt         time.Time `gorm:"column:failed_at;not null"`
}

func (FailedPayment) TableName() string { return "failed_payments" }
