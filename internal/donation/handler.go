package donation

import (
	"context"
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/ngo-platform/internal/transport"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CaptureIntent(ctx context.Context, organizationID int64, dto IntentDTO) (*Intent, string, error)
	CreateCheckout(ctx context.Context, intentToken string) (*Checkout, error)
	Reconcile(ctx context.Context, sessionID string, outcome Outcome) (*Payment, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	// SecureCookie marks the intent cookie Secure; off only for plain-HTTP development.
	SecureCookie bool
}

func NewHandler(service ServiceAPI, secureCookie bool) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		Service:      service,
		SecureCookie: secureCookie,
	}
}

func (h *Handler) CaptureIntent(w http.ResponseWriter, r *http.Request) {
	orgID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orgID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid organization ID")
		return
	}

	var dto IntentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("CaptureIntent: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, signed, err := h.Service.CaptureIntent(r.Context(), orgID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     IntentCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  intent.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.WriteJSON(w, http.StatusCreated, intent)
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var intentToken string
	if cookie, err := r.Cookie(IntentCookieName); err == nil {
		intentToken = cookie.Value
	}

	checkout, err := h.Service.CreateCheckout(r.Context(), intentToken)
	if err != nil {
		// the intent cookie is kept so the donor can retry
		h.HandleServiceError(w, err)
		return
	}

	h.clearIntentCookie(w)
	h.Logger.Info("CreateCheckout: checkout created", "payment_id", checkout.PaymentID)
	h.WriteJSON(w, http.StatusCreated, checkout)
}

func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, OutcomeSuccess)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, OutcomeFailure)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request, outcome Outcome) {
	sessionID := r.URL.Query().Get("session_id")

	p, err := h.Service.Reconcile(r.Context(), sessionID, outcome)
	switch {
	case err == nil:
		h.WriteJSON(w, http.StatusOK, p)
	case goerrors.Is(err, ErrPaymentNotSettled):
		h.WriteJSON(w, http.StatusAccepted, map[string]string{
			"status":  "pending",
			"message": PendingMessage,
		})
	default:
		h.HandleServiceError(w, err)
	}
}

func (h *Handler) clearIntentCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     IntentCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
