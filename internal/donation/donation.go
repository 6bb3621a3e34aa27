package donation

import (
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/payment"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const (
	IntentPurpose    = "donation-intent"
	IntentCookieName = "donation_intent"

	// SessionIDPlaceholder is expanded by the gateway in success and cancel URLs.
	SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

	FailureReason        = "Payment canceled or rejected by gateway."
	CanceledCheckoutCode = "checkout_canceled"

	GatewayErrorMessage = "Payment gateway error. Please try again."
	PendingMessage      = "Payment confirmation failed. Your donation status is pending. Please check your email."
	AmbiguousMessage    = "Payment status is ambiguous. Please contact support."
)

const (
	MinAmountCents int64 = 100
	MaxAmountCents int64 = 99999999
)

// Outcome is what the donor's browser reports when returning from checkout.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

var (
	ErrOrganizationNotFound = errors.NewNotFoundError("Organization not found", errors.ErrCodeOrganizationNotFound)
	ErrOrganizationInactive = errors.NewNotFoundError("Organization is not accepting donations", errors.ErrCodeOrganizationInactive)
	ErrIntentExpired        = errors.NewValidationError("Your donation session has expired. Please start again.", errors.ErrCodeIntentExpired)
	ErrIntentAlreadyUsed    = errors.NewConflictError("This donation has already been submitted", errors.ErrCodeIntentAlreadyUsed)
	ErrPaymentNotFound      = errors.NewNotFoundError(AmbiguousMessage, errors.ErrCodePaymentNotFound)
	ErrPaymentNotSettled    = errors.NewConflictError(PendingMessage, errors.ErrCodePaymentNotSettled)
	ErrGatewayUnavailable   = errors.NewExternalError(GatewayErrorMessage, errors.ErrCodeGatewayUnavailable)
	ErrGatewayAuth          = errors.NewExternalError(GatewayErrorMessage, errors.ErrCodeGatewayAuthFailed)
)

// IntentClaims is the donation intent carried between the donation form and
// checkout. It lives only in the signed cookie.
type IntentClaims struct {
	jwt.RegisteredClaims
	OrganizationID int64  `json:"org_id"`
	DonorName      string `json:"donor_name,omitempty"`
	DonorEmail     string `json:"donor_email"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
}

type Intent struct {
	OrganizationID   int64     `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	DonorName        string    `json:"donor_name,omitempty"`
	DonorEmail       string    `json:"donor_email"`
	Amount           string    `json:"amount"`
	Currency         string    `json:"currency"`
	ExpiresAt        time.Time `json:"expires_at"`
}

type Checkout struct {
	PaymentID   int64  `json:"payment_id"`
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Payment is the donation as the API exposes it. Outcome is set once the
// payment reached a terminal state and tells which detail fields apply.
type Payment struct {
	ID               int64           `json:"id"`
	OrganizationID   int64           `json:"organization_id"`
	DonorName        *string         `json:"donor_name,omitempty"`
	DonorEmail       string          `json:"donor_email"`
	Amount           string          `json:"amount"`
	AmountCents      int64           `json:"amount_cents"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	GatewaySessionID *string         `json:"gateway_session_id,omitempty"`
	Outcome          *PaymentOutcome `json:"outcome,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type PaymentOutcome struct {
	Kind             string     `json:"kind"`
	GatewayChargeID  string     `json:"gateway_charge_id,omitempty"`
	ReceiptURL       *string    `json:"receipt_url,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	GatewayErrorCode *string    `json:"gateway_error_code,omitempty"`
	FailedAt         *time.Time `json:"failed_at,omitempty"`
}

func (p *Payment) IsTerminal() bool {
	return p.Status == payment.StatusSuccess || p.Status == payment.StatusFailed
}

func FromDataModel(p *payment.Payment) *Payment {
	out := &Payment{
		ID:               p.ID,
		OrganizationID:   p.OrganizationID,
		DonorName:        p.DonorName,
		DonorEmail:       p.DonorEmail,
		Amount:           FormatCents(p.AmountCents),
		AmountCents:      p.AmountCents,
		Currency:         p.Currency,
		Status:           p.Status,
		GatewaySessionID: p.GatewaySessionID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}

	switch {
	case p.Kind == payment.KindSuccess && p.Success != nil:
		confirmedAt := p.Success.ConfirmedAt
		out.Outcome = &PaymentOutcome{
			Kind:            payment.KindSuccess,
			GatewayChargeID: p.Success.GatewayChargeID,
			ReceiptURL:      p.Success.ReceiptURL,
			ConfirmedAt:     &confirmedAt,
		}
	case p.Kind == payment.KindFailure && p.Failure != nil:
		failedAt := p.Failure.FailedAt
		out.Outcome = &PaymentOutcome{
			Kind:             payment.KindFailure,
			ErrorMessage:     p.Failure.ErrorMessage,
			GatewayErrorCode: p.Failure.GatewayErrorCode,
			FailedAt:         &failedAt,
		}
	}
	return out
}

func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
