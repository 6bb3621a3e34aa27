package paymentgateway

import (
	"errors"
	"fmt"
)

// Checkout session payment states as reported by the gateway.
const (
	SessionPaid   = "paid"
	SessionUnpaid = "unpaid"

	SessionOpen     = "open"
	SessionComplete = "complete"
	SessionExpired  = "expired"
)

type CheckoutRequest struct {
	PaymentID      int64
	OrganizationID int64
	AmountCents    int64
	Currency       string
	Description    string
	CustomerEmail  string
	SuccessURL     string
	CancelURL      string
}

func (r *CheckoutRequest) Validate() error {
	if r.PaymentID <= 0 {
		return errors.New("payment_id is required")
	}
	if r.AmountCents <= 0 {
		return errors.New("amount must be greater than 0")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	if r.SuccessURL == "" || r.CancelURL == "" {
		return errors.New("success and cancel urls are required")
	}
	return nil
}

type CheckoutSession struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	PaymentIntentID string
	Metadata        map[string]string
}

func (s *CheckoutSession) IsPaid() bool {
	return s.PaymentStatus == SessionPaid
}

// Error is returned by gateway clients. Auth marks a misconfigured credential,
// which retrying never fixes.
type Error struct {
	Op         string
	Code       string
	HTTPStatus int
	Auth       bool
	Err        error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %s failed (%s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsAuthError(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Auth
}
