package notification

import (
	"context"
	"errors"
)

const (
	TemplateRegistrationLink    = "registration_link"
	TemplateDonationSuccess     = "donation_success"
	TemplateDonationFailure     = "donation_failure"
	TemplateApplicationApproved = "application_approved"
	TemplateApplicationRejected = "application_rejected"
)

var (
	ErrQueueFull       = errors.New("notification queue full")
	ErrUnknownTemplate = errors.New("unknown notification template")
	ErrStopped         = errors.New("notification dispatcher stopped")
)

// Message is what workflows hand to the dispatcher.
type Message struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Email is a rendered message ready for a Sender.
type Email struct {
	To        string
	Subject   string
	PlainBody string
	HTMLBody  string
}

type Sender interface {
	Send(ctx context.Context, email Email) error
}

// Notifier is the dependency workflows take.
type Notifier interface {
	Enqueue(msg Message) error
	SendNow(ctx context.Context, msg Message) error
}
