package moderation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/transport"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListPending(ctx context.Context, actor *errors.User) ([]*PendingApplication, error)
	ListVerified(ctx context.Context, actor *errors.User) ([]*Organization, error)
	ListRejected(ctx context.Context, actor *errors.User) ([]*RejectedApplication, error)
	Approve(ctx context.Context, actor *errors.User, pendingID int64) (*Organization, error)
	Reject(ctx context.Context, actor *errors.User, pendingID int64, reason string) (*RejectedApplication, error)
	Restore(ctx context.Context, actor *errors.User, rejectedID int64) (*PendingApplication, error)
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	user, _ := errors.UserFromContext(r.Context())
	apps, err := h.Service.ListPending(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

func (h *Handler) ListVerified(w http.ResponseWriter, r *http.Request) {
	user, _ := errors.UserFromContext(r.Context())
	orgs, err := h.Service.ListVerified(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"organizations": orgs})
}

func (h *Handler) ListRejected(w http.ResponseWriter, r *http.Request) {
	user, _ := errors.UserFromContext(r.Context())
	apps, err := h.Service.ListRejected(r.Context(), user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	user, _ := errors.UserFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	org, err := h.Service.Approve(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Approve: application approved", "application_id", id, "organization_id", org.ID)
	h.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	user, _ := errors.UserFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	// the body is optional; an empty one uses the default reason
	var dto RejectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && err != io.EOF {
		h.Logger.Error("Reject: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rejected, err := h.Service.Reject(r.Context(), user, id, dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Reject: application rejected", "application_id", id)
	h.WriteJSON(w, http.StatusOK, rejected)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	user, _ := errors.UserFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	pending, err := h.Service.Restore(r.Context(), user, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Restore: application restored", "rejected_id", id, "application_id", pending.ID)
	h.WriteJSON(w, http.StatusOK, pending)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.Logger.Error("invalid application ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid application ID")
		return 0, false
	}
	return id, true
}
