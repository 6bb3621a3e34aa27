package events

const (
	EventTypeDonationSucceeded   = "donation.succeeded"
	EventTypeDonationFailed      = "donation.failed"
	EventTypeApplicationApproved = "application.approved"
	EventTypeApplicationRejected = "application.rejected"
)

type DonationSucceededEvent struct {
	BaseEvent
	PaymentID        int64   `json:"payment_id"`
	OrganizationID   int64   `json:"organization_id"`
	OrganizationName string  `json:"organization_name"`
	DonorName        *string `json:"donor_name,omitempty"`
	DonorEmail       string  `json:"donor_email"`
	AmountCents      int64   `json:"amount_cents"`
	Currency         string  `json:"currency"`
	GatewayChargeID  string  `json:"gateway_charge_id"`
	ReceiptURL       *string `json:"receipt_url,omitempty"`
}

func NewDonationSucceededEvent(paymentID, organizationID int64, organizationName string, donorName *string, donorEmail string, amountCents int64, currency, chargeID string, receiptURL *string) *DonationSucceededEvent {
	return &DonationSucceededEvent{
		BaseEvent: NewBaseEvent(EventTypeDonationSucceeded, map[string]interface{}{
			"payment_id":        paymentID,
			"organization_id":   organizationID,
			"amount_cents":      amountCents,
			"currency":          currency,
			"gateway_charge_id": chargeID,
		}),
		PaymentID:        paymentID,
		OrganizationID:   organizationID,
		OrganizationName: organizationName,
		DonorName:        donorName,
		DonorEmail:       donorEmail,
		AmountCents:      amountCents,
		Currency:         currency,
		GatewayChargeID:  chargeID,
		ReceiptURL:       receiptURL,
	}
}

type DonationFailedEvent struct {
	BaseEvent
	PaymentID        int64   `json:"payment_id"`
	OrganizationID   int64   `json:"organization_id"`
	OrganizationName string  `json:"organization_name"`
	DonorName        *string `json:"donor_name,omitempty"`
	DonorEmail       string  `json:"donor_email"`
	AmountCents      int64   `json:"amount_cents"`
	Currency         string  `json:"currency"`
	Reason           string  `json:"reason"`
}

func NewDonationFailedEvent(paymentID, organizationID int64, organizationName string, donorName *string, donorEmail string, amountCents int64, currency, reason string) *DonationFailedEvent {
	return &DonationFailedEvent{
		BaseEvent: NewBaseEvent(EventTypeDonationFailed, map[string]interface{}{
			"payment_id":      paymentID,
			"organization_id": organizationID,
			"amount_cents":    amountCents,
			"currency":        currency,
			"reason":          reason,
		}),
		PaymentID:        paymentID,
		OrganizationID:   organizationID,
		OrganizationName: organizationName,
		DonorName:        donorName,
		DonorEmail:       donorEmail,
		AmountCents:      amountCents,
		Currency:         currency,
		Reason:           reason,
	}
}

// ApplicationDecidedEvent covers both approval and rejection.
type ApplicationDecidedEvent struct {
	BaseEvent
	ApplicationID    int64  `json:"application_id"`
	OrganizationName string `json:"organization_name"`
	ContactEmail     string `json:"contact_email"`
	Reason           string `json:"reason,omitempty"`
	AdminID          int64  `json:"admin_id"`
}

func NewApplicationApprovedEvent(organizationID int64, name, contactEmail string, adminID int64) *ApplicationDecidedEvent {
	return newApplicationDecided(EventTypeApplicationApproved, organizationID, name, contactEmail, "", adminID)
}

func NewApplicationRejectedEvent(applicationID int64, name, contactEmail, reason string, adminID int64) *ApplicationDecidedEvent {
	return newApplicationDecided(EventTypeApplicationRejected, applicationID, name, contactEmail, reason, adminID)
}

func newApplicationDecided(eventType string, id int64, name, contactEmail, reason string, adminID int64) *ApplicationDecidedEvent {
	return &ApplicationDecidedEvent{
		BaseEvent: NewBaseEvent(eventType, map[string]interface{}{
			"application_id": id,
			"admin_id":       adminID,
		}),
		ApplicationID:    id,
		OrganizationName: name,
		ContactEmail:     contactEmail,
		Reason:           reason,
		AdminID:          adminID,
	}
}
