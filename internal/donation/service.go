package donation

import (
	"context"
	goerrors "errors"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/common/validation"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/payment"
	paymentgatewaytypes "github.com/frahmantamala/ngo-platform/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/ngo-platform/internal/core/events"
	"github.com/frahmantamala/ngo-platform/internal/core/token"
)

var ErrSessionIDMissing = errors.NewValidationError(AmbiguousMessage, errors.ErrCodeValidationFailed)

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req *paymentgatewaytypes.CheckoutRequest) (*paymentgatewaytypes.CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*paymentgatewaytypes.CheckoutSession, error)
}

// OpenSessionFunc runs inside the checkout transaction once the payment row
// has its id. It returns the gateway session id to attach to the payment.
type OpenSessionFunc func(p *payment.Payment) (string, error)

// Settlement is the terminal outcome written by Repository.Settle.
type Settlement struct {
	Outcome    Outcome
	ChargeID   string
	ReceiptURL *string
	ErrorCode  *string
	At         time.Time
}

type Repository interface {
	GetOrganization(ctx context.Context, id int64) (*organization.VerifiedOrganization, error)
	CreateCheckout(ctx context.Context, p *payment.Payment, open OpenSessionFunc) error
	GetBySessionID(ctx context.Context, sessionID string) (*payment.Payment, error)
	// Settle locks the payment and applies s unless the payment is already
	// terminal. applied reports whether anything was written.
	Settle(ctx context.Context, paymentID int64, s Settlement) (p *payment.Payment, applied bool, err error)
	ListStalePending(ctx context.Context, updatedBefore time.Time, limit int) ([]*payment.Payment, error)
}

type Config struct {
	Currency       string
	SuccessURL     string
	CancelURL      string
	GatewayTimeout time.Duration
}

type Service struct {
	repo      Repository
	gateway   Gateway
	signer    *token.Signer
	publisher events.Publisher
	config    Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, gateway Gateway, signer *token.Signer, publisher events.Publisher, config Config, logger *slog.Logger) *Service {
	if config.Currency == "" {
		config.Currency = "usd"
	}
	if config.GatewayTimeout <= 0 {
		config.GatewayTimeout = 15 * time.Second
	}
	return &Service{
		repo:      repo,
		gateway:   gateway,
		signer:    signer,
		publisher: publisher,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// CaptureIntent validates a donation form and returns the signed intent token
// for the handler to store. Nothing is persisted.
func (s *Service) CaptureIntent(ctx context.Context, organizationID int64, dto IntentDTO) (*Intent, string, error) {
	amountCents, appErr := dto.Validate()
	if appErr != nil {
		s.logger.Warn("donation intent rejected", "organization_id", organizationID, "error", appErr)
		return nil, "", appErr
	}

	org, err := s.activeOrganization(ctx, organizationID)
	if err != nil {
		return nil, "", err
	}

	email := validation.NormalizeEmail(dto.DonorEmail)
	claims := &IntentClaims{
		RegisteredClaims: s.signer.Registered(email),
		OrganizationID:   org.ID,
		DonorName:        dto.donorName(),
		DonorEmail:       email,
		AmountCents:      amountCents,
		Currency:         s.config.Currency,
	}
	signed, err := s.signer.Sign(claims)
	if err != nil {
		s.logger.Error("failed to sign donation intent", "error", err)
		return nil, "", errors.NewInternalError("Failed to start donation", err)
	}

	s.logger.Info("donation intent captured",
		"organization_id", org.ID,
		"intent_id", claims.ID,
		"amount_cents", amountCents)

	return &Intent{
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		DonorName:        claims.DonorName,
		DonorEmail:       email,
		Amount:           FormatCents(amountCents),
		Currency:         claims.Currency,
		ExpiresAt:        claims.ExpiresAt.Time,
	}, signed, nil
}

// CreateCheckout turns an intent into a PENDING payment with a gateway
// checkout session. A gateway failure rolls the payment back.
func (s *Service) CreateCheckout(ctx context.Context, intentToken string) (*Checkout, error) {
	var claims IntentClaims
	if err := s.signer.Parse(intentToken, &claims); err != nil {
		s.logger.Warn("donation intent missing or expired", "error", err)
		return nil, ErrIntentExpired
	}

	org, err := s.activeOrganization(ctx, claims.OrganizationID)
	if err != nil {
		return nil, err
	}

	p := &payment.Payment{
		OrganizationID: org.ID,
		IntentID:       claims.ID,
		DonorEmail:     claims.DonorEmail,
		AmountCents:    claims.AmountCents,
		Currency:       claims.Currency,
		Status:         payment.StatusPendingInitiation,
		Kind:           payment.KindPayment,
	}
	if claims.DonorName != "" {
		name := claims.DonorName
		p.DonorName = &name
	}

	var session *paymentgatewaytypes.CheckoutSession
	err = s.repo.CreateCheckout(ctx, p, func(p *payment.Payment) (string, error) {
		req := &paymentgatewaytypes.CheckoutRequest{
			PaymentID:      p.ID,
			OrganizationID: org.ID,
			AmountCents:    p.AmountCents,
			Currency:       p.Currency,
			Description:    "Donation to " + org.Name,
			CustomerEmail:  p.DonorEmail,
			SuccessURL:     withSessionID(s.config.SuccessURL),
			CancelURL:      withSessionID(s.config.CancelURL),
		}

		callCtx, cancel := context.WithTimeout(ctx, s.config.GatewayTimeout)
		defer cancel()

		created, err := s.gateway.CreateCheckoutSession(callCtx, req)
		if err != nil {
			return "", s.gatewayError("create_checkout", err)
		}
		session = created
		return created.ID, nil
	})
	if err != nil {
		if goerrors.Is(err, ErrIntentAlreadyUsed) {
			s.logger.Warn("donation intent replayed", "intent_id", claims.ID)
			return nil, err
		}
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create checkout", "intent_id", claims.ID, "error", err)
		return nil, errors.NewInternalError("Failed to create checkout", err)
	}

	s.logger.Info("checkout created",
		"payment_id", p.ID,
		"session_id", session.ID,
		"organization_id", org.ID)

	return &Checkout{
		PaymentID:   p.ID,
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// Reconcile finalizes the payment behind sessionID. Calling it again for a
// settled payment returns the stored record without touching the gateway.
func (s *Service) Reconcile(ctx context.Context, sessionID string, outcome Outcome) (*Payment, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		s.logger.Warn("reconciliation requested without session id", "outcome", outcome)
		return nil, ErrSessionIDMissing
	}

	p, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if goerrors.Is(err, ErrPaymentNotFound) {
			s.logger.Warn("no payment for checkout session", "session_id", sessionID, "outcome", outcome)
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("failed to load payment", "session_id", sessionID, "error", err)
		return nil, errors.NewInternalError("Failed to load payment", err)
	}

	if p.IsTerminal() {
		s.logger.Info("payment already settled", "payment_id", p.ID, "status", p.Status)
		return FromDataModel(p), nil
	}

	session, err := s.retrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// the redirect is only a hint; a paid session is never recorded as failed
	if outcome == OutcomeFailure && session.IsPaid() {
		s.logger.Warn("cancel redirect for a paid session, settling as success",
			"payment_id", p.ID,
			"session_id", sessionID)
		outcome = OutcomeSuccess
	}

	return s.finalize(ctx, p, outcome, session)
}

// ReconcileStale settles PENDING payments whose donor never came back from
// checkout. The outcome is taken from the gateway: a paid session succeeds, an
// expired one fails and anything else is left for a later run.
func (s *Service) ReconcileStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stale, err := s.repo.ListStalePending(ctx, s.now().UTC().Add(-olderThan), limit)
	if err != nil {
		s.logger.Error("failed to list stale payments", "error", err)
		return 0, errors.NewInternalError("Failed to list stale payments", err)
	}

	settled := 0
	for _, p := range stale {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		if p.GatewaySessionID == nil {
			continue
		}

		session, err := s.retrieveSession(ctx, *p.GatewaySessionID)
		if err != nil {
			if goerrors.Is(err, ErrGatewayAuth) {
				return settled, err
			}
			continue
		}

		outcome, ok := gatewayOutcome(session)
		if !ok {
			s.logger.Debug("stale payment still open at gateway", "payment_id", p.ID, "session_status", session.Status)
			continue
		}

		if _, err := s.finalize(ctx, p, outcome, session); err != nil {
			s.logger.Warn("stale payment not settled", "payment_id", p.ID, "error", err)
			continue
		}
		settled++
	}

	s.logger.Info("stale payment reconciliation finished", "checked", len(stale), "settled", settled)
	return settled, nil
}

// SettleFromGateway settles the payment behind sessionID using only what the
// gateway reports for the session. It serves gateway webhooks, where the
// caller's claim about the outcome is not trusted.
func (s *Service) SettleFromGateway(ctx context.Context, sessionID string) (*Payment, error) {
	p, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if goerrors.Is(err, ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		s.logger.Error("failed to load payment", "session_id", sessionID, "error", err)
		return nil, errors.NewInternalError("Failed to load payment", err)
	}
	if p.IsTerminal() {
		return FromDataModel(p), nil
	}

	session, err := s.retrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	outcome, ok := gatewayOutcome(session)
	if !ok {
		s.logger.Info("checkout session still open", "payment_id", p.ID, "session_status", session.Status)
		return nil, ErrPaymentNotSettled
	}
	return s.finalize(ctx, p, outcome, session)
}

// gatewayOutcome maps a session to a terminal outcome: paid succeeds,
// expired fails, anything else is still open.
func gatewayOutcome(session *paymentgatewaytypes.CheckoutSession) (Outcome, bool) {
	switch {
	case session.IsPaid():
		return OutcomeSuccess, true
	case session.Status == paymentgatewaytypes.SessionExpired:
		return OutcomeFailure, true
	default:
		return "", false
	}
}

func (s *Service) finalize(ctx context.Context, p *payment.Payment, outcome Outcome, session *paymentgatewaytypes.CheckoutSession) (*Payment, error) {
	settlement := Settlement{Outcome: outcome, At: s.now().UTC()}

	switch outcome {
	case OutcomeSuccess:
		if !session.IsPaid() || session.PaymentIntentID == "" {
			s.logger.Warn("checkout session not settled yet",
				"payment_id", p.ID,
				"session_id", session.ID,
				"payment_status", session.PaymentStatus)
			return nil, ErrPaymentNotSettled
		}
		settlement.ChargeID = session.PaymentIntentID
		if session.URL != "" {
			receipt := session.URL
			settlement.ReceiptURL = &receipt
		}
	case OutcomeFailure:
		code := CanceledCheckoutCode
		if session.PaymentIntentID != "" {
			code = session.PaymentIntentID
		}
		settlement.ErrorCode = &code
	default:
		return nil, errors.NewValidationError("Unknown payment outcome", errors.ErrCodeValidationFailed)
	}

	settled, applied, err := s.repo.Settle(ctx, p.ID, settlement)
	if err != nil {
		s.logger.Error("failed to settle payment", "payment_id", p.ID, "outcome", outcome, "error", err)
		return nil, errors.NewInternalError("Failed to record payment outcome", err)
	}

	if !applied {
		s.logger.Info("payment settled concurrently", "payment_id", p.ID, "status", settled.Status)
		return FromDataModel(settled), nil
	}

	s.logger.Info("payment settled",
		"payment_id", settled.ID,
		"status", settled.Status,
		"amount_cents", settled.AmountCents)

	s.publishOutcome(ctx, settled)
	return FromDataModel(settled), nil
}

func (s *Service) publishOutcome(ctx context.Context, p *payment.Payment) {
	if s.publisher == nil {
		return
	}

	var orgName string
	if org, err := s.repo.GetOrganization(ctx, p.OrganizationID); err == nil {
		orgName = org.Name
	}

	var event events.Event
	switch p.Status {
	case payment.StatusSuccess:
		var chargeID string
		var receiptURL *string
		if p.Success != nil {
			chargeID, receiptURL = p.Success.GatewayChargeID, p.Success.ReceiptURL
		}
		event = events.NewDonationSucceededEvent(p.ID, p.OrganizationID, orgName, p.DonorName, p.DonorEmail, p.AmountCents, p.Currency, chargeID, receiptURL)
	case payment.StatusFailed:
		event = events.NewDonationFailedEvent(p.ID, p.OrganizationID, orgName, p.DonorName, p.DonorEmail, p.AmountCents, p.Currency, FailureReason)
	default:
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish donation event", "error", err, "event_type", event.EventType(), "payment_id", p.ID)
	}
}

func (s *Service) activeOrganization(ctx context.Context, id int64) (*organization.VerifiedOrganization, error) {
	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		if goerrors.Is(err, ErrOrganizationNotFound) {
			s.logger.Warn("donation to unknown organization", "organization_id", id)
			return nil, ErrOrganizationNotFound
		}
		s.logger.Error("failed to load organization", "organization_id", id, "error", err)
		return nil, errors.NewInternalError("Failed to load organization", err)
	}
	if !org.IsActive {
		s.logger.Warn("donation to inactive organization", "organization_id", id)
		return nil, ErrOrganizationInactive
	}
	return org, nil
}

func (s *Service) retrieveSession(ctx context.Context, sessionID string) (*paymentgatewaytypes.CheckoutSession, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.config.GatewayTimeout)
	defer cancel()

	session, err := s.gateway.RetrieveCheckoutSession(callCtx, sessionID)
	if err != nil {
		return nil, s.gatewayError("retrieve_session", err)
	}
	return session, nil
}

func (s *Service) gatewayError(op string, err error) error {
	if paymentgatewaytypes.IsAuthError(err) {
		s.logger.Error("critical: payment gateway authentication failed", "op", op, "error", err)
		return ErrGatewayAuth.WithCause(err)
	}
	s.logger.Error("payment gateway unavailable", "op", op, "error", err)
	return ErrGatewayUnavailable.WithCause(err)
}

func withSessionID(raw string) string {
	if strings.Contains(raw, SessionIDPlaceholder) {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "session_id=" + SessionIDPlaceholder
}
