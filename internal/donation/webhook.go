package donation

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ngo-platform/internal/transport"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	SignatureHeader     = "Stripe-Signature"
	maxWebhookBodyBytes = 64 << 10
)

// settlingEvents are the checkout events that can move a payment to a
// terminal state. Everything else is acknowledged and ignored.
var settlingEvents = map[stripe.EventType]bool{
	"checkout.session.completed":               true,
	"checkout.session.async_payment_succeeded": true,
	"checkout.session.async_payment_failed":    true,
	"checkout.session.expired":                 true,
}

type WebhookServiceAPI interface {
	SettleFromGateway(ctx context.Context, sessionID string) (*Payment, error)
}

type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// WebhookHandler receives gateway events for donors who never return through
// the success or cancel redirect.
type WebhookHandler struct {
	*transport.BaseHandler
	Service WebhookServiceAPI
	secret  string
}

func NewWebhookHandler(service WebhookServiceAPI, secret string) *WebhookHandler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &WebhookHandler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		secret:      secret,
	}
}

func (h *WebhookHandler) HandleGatewayEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get(SignatureHeader), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.Logger.Warn("webhook signature rejected", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid webhook signature")
		return
	}

	if !settlingEvents[event.Type] {
		h.WriteJSON(w, http.StatusOK, WebhookResponse{Status: "ignored"})
		return
	}

	var session stripe.CheckoutSession
	if event.Data == nil || json.Unmarshal(event.Data.Raw, &session) != nil || session.ID == "" {
		h.Logger.Warn("webhook event without checkout session", "event_id", event.ID, "event_type", event.Type)
		h.WriteError(w, http.StatusBadRequest, "event carries no checkout session")
		return
	}

	h.Logger.Info("received gateway event", "event_id", event.ID, "event_type", event.Type, "session_id", session.ID)

	p, err := h.Service.SettleFromGateway(r.Context(), session.ID)
	switch {
	case err == nil:
		h.WriteJSON(w, http.StatusOK, WebhookResponse{Status: p.Status})
	case goerrors.Is(err, ErrPaymentNotFound):
		// sessions created outside this platform share the account
		h.WriteJSON(w, http.StatusOK, WebhookResponse{Status: "ignored", Message: "unknown session"})
	case goerrors.Is(err, ErrPaymentNotSettled):
		h.WriteJSON(w, http.StatusOK, WebhookResponse{Status: "pending"})
	default:
		// non-2xx makes the gateway redeliver
		h.HandleServiceError(w, err)
	}
}
