package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/ngo-platform/internal/core/events"
	"github.com/shopspring/decimal"
)

// Subscriber turns domain events into queued emails.
type Subscriber struct {
	notifier Notifier
	logger   *slog.Logger
}

func NewSubscriber(notifier Notifier, logger *slog.Logger) *Subscriber {
	return &Subscriber{notifier: notifier, logger: logger}
}

func (s *Subscriber) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeDonationSucceeded, s.HandleDonationSucceeded)
	bus.Subscribe(events.EventTypeDonationFailed, s.HandleDonationFailed)
	bus.Subscribe(events.EventTypeApplicationApproved, s.HandleApplicationDecided)
	bus.Subscribe(events.EventTypeApplicationRejected, s.HandleApplicationDecided)
}

func (s *Subscriber) HandleDonationSucceeded(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.DonationSucceededEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	receipt := ""
	if evt.ReceiptURL != nil {
		receipt = *evt.ReceiptURL
	}

	return s.enqueue(Message{
		To:       evt.DonorEmail,
		Subject:  "Thank you for your donation to " + evt.OrganizationName,
		Template: TemplateDonationSuccess,
		Data: map[string]any{
			"DonorName":        donorName(evt.DonorName),
			"Amount":           FormatAmount(evt.AmountCents),
			"Currency":         strings.ToUpper(evt.Currency),
			"OrganizationName": evt.OrganizationName,
			"PaymentID":        evt.PaymentID,
			"ChargeID":         evt.GatewayChargeID,
			"ReceiptURL":       receipt,
		},
	})
}

func (s *Subscriber) HandleDonationFailed(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.DonationFailedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	return s.enqueue(Message{
		To:       evt.DonorEmail,
		Subject:  "Your donation could not be completed",
		Template: TemplateDonationFailure,
		Data: map[string]any{
			"DonorName":        donorName(evt.DonorName),
			"Amount":           FormatAmount(evt.AmountCents),
			"Currency":         strings.ToUpper(evt.Currency),
			"OrganizationName": evt.OrganizationName,
			"Reason":           evt.Reason,
		},
	})
}

func (s *Subscriber) HandleApplicationDecided(ctx context.Context, event events.Event) error {
	evt, ok := event.(*events.ApplicationDecidedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	msg := Message{
		To: evt.ContactEmail,
		Data: map[string]any{
			"OrganizationName": evt.OrganizationName,
			"Reason":           evt.Reason,
		},
	}
	switch evt.EventType() {
	case events.EventTypeApplicationApproved:
		msg.Subject = "Your organization has been approved"
		msg.Template = TemplateApplicationApproved
	default:
		msg.Subject = "Update on your organization application"
		msg.Template = TemplateApplicationRejected
	}

	return s.enqueue(msg)
}

func (s *Subscriber) enqueue(msg Message) error {
	if err := s.notifier.Enqueue(msg); err != nil {
		s.logger.Warn("notification not queued", "error", err, "template", msg.Template)
		return err
	}
	return nil
}

// FormatAmount renders minor units as a two-decimal string.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func donorName(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}
