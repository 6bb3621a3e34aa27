package moderation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/moderation"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockService struct {
	lastReason string
	lastID     int64
	err        error
}

func (m *mockService) ListPending(ctx context.Context, actor *errors.User) ([]*moderation.PendingApplication, error) {
	return []*moderation.PendingApplication{}, m.err
}

func (m *mockService) ListVerified(ctx context.Context, actor *errors.User) ([]*moderation.Organization, error) {
	return []*moderation.Organization{}, m.err
}

func (m *mockService) ListRejected(ctx context.Context, actor *errors.User) ([]*moderation.RejectedApplication, error) {
	return []*moderation.RejectedApplication{}, m.err
}

func (m *mockService) Approve(ctx context.Context, actor *errors.User, pendingID int64) (*moderation.Organization, error) {
	m.lastID = pendingID
	if m.err != nil {
		return nil, m.err
	}
	return &moderation.Organization{ID: 10, Name: "Helping Hands"}, nil
}

func (m *mockService) Reject(ctx context.Context, actor *errors.User, pendingID int64, reason string) (*moderation.RejectedApplication, error) {
	m.lastID, m.lastReason = pendingID, reason
	if m.err != nil {
		return nil, m.err
	}
	return &moderation.RejectedApplication{ID: 3, RejectionReason: reason}, nil
}

func (m *mockService) Restore(ctx context.Context, actor *errors.User, rejectedID int64) (*moderation.PendingApplication, error) {
	m.lastID = rejectedID
	if m.err != nil {
		return nil, m.err
	}
	return &moderation.PendingApplication{ID: 4}, nil
}

var _ = Describe("Handler", func() {
	var (
		svc    *mockService
		router *chi.Mux
	)

	BeforeEach(func() {
		svc = &mockService{}
		h := moderation.NewHandler(svc)
		router = chi.NewRouter()
		router.Get("/admin/applications/pending", h.ListPending)
		router.Post("/admin/applications/{id}/approve", h.Approve)
		router.Post("/admin/applications/{id}/reject", h.Reject)
		router.Post("/admin/applications/rejected/{id}/restore", h.Restore)
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(errors.ContextWithUser(req.Context(), admin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("approves by path id", func() {
		rec := serve(http.MethodPost, "/admin/applications/7/approve", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastID).To(Equal(int64(7)))
	})

	It("accepts a reject without a body", func() {
		rec := serve(http.MethodPost, "/admin/applications/7/reject", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastReason).To(BeEmpty())
	})

	It("passes the rejection reason", func() {
		rec := serve(http.MethodPost, "/admin/applications/7/reject", `{"reason":"Incomplete"}`)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastReason).To(Equal("Incomplete"))
	})

	It("rejects a non-numeric id", func() {
		rec := serve(http.MethodPost, "/admin/applications/abc/approve", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps conflicts to 409", func() {
		svc.err = moderation.ErrOrganizationConflict
		rec := serve(http.MethodPost, "/admin/applications/7/approve", "")

		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("ORGANIZATION_CONFLICT"))
	})

	It("maps missing admin rights to 403", func() {
		svc.err = errors.ErrAdminRequired
		rec := serve(http.MethodGet, "/admin/applications/pending", "")

		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("restores by path id", func() {
		rec := serve(http.MethodPost, "/admin/applications/rejected/3/restore", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastID).To(Equal(int64(3)))
	})
})
