package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frahmantamala/ngo-platform/internal/auth"
	"github.com/frahmantamala/ngo-platform/internal/category"
	"github.com/frahmantamala/ngo-platform/internal/directory"
	"github.com/frahmantamala/ngo-platform/internal/donation"
	"github.com/frahmantamala/ngo-platform/internal/moderation"
	"github.com/frahmantamala/ngo-platform/internal/registration"
	"github.com/frahmantamala/ngo-platform/internal/user"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Transport Suite")
}

var documentPath = filepath.Join("..", "..", "..", "api", "openapi.yml")

func newTestRouter() *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, nil, Handlers{
		Auth:         auth.NewHandler(nil),
		Registration: registration.NewHandler(nil, 0),
		Moderation:   moderation.NewHandler(nil),
		Donation:     donation.NewHandler(nil, false),
		Directory:    directory.NewHandler(nil),
		Webhook:      donation.NewWebhookHandler(nil, "whsec_test"),
		Category:     category.NewHandler(nil),
		User:         user.NewHandler(nil),
	}, nil, logger.Discard())
	return router
}

var _ = Describe("OpenAPI document", func() {
	var (
		ctx    = context.Background()
		doc    *openapi3.T
		router routers.Router
	)

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile(documentPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Validate(loader.Context)).To(Succeed())

		router, err = legacy.NewRouter(doc)
		Expect(err).NotTo(HaveOccurred())
	})

	It("documents every registered route", func() {
		var undocumented []string
		err := chi.Walk(newTestRouter(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			path := strings.TrimSuffix(strings.TrimSuffix(route, "/*"), "/")
			if path == "/openapi.yml" || strings.HasPrefix(path, "/swagger") {
				return nil
			}
			item := doc.Paths.Find(path)
			if item == nil || item.GetOperation(method) == nil {
				undocumented = append(undocumented, method+" "+path)
			}
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(undocumented).To(BeEmpty())
	})

	It("matches the ping response", func() {
		req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/api/v1/ping", nil)
		rec := httptest.NewRecorder()

		newTestRouter().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(validateResponse(ctx, router, req, rec)).To(Succeed())
	})

	It("matches the health response when the database is missing", func() {
		req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/api/v1/health", nil)
		rec := httptest.NewRecorder()

		newTestRouter().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(validateResponse(ctx, router, req, rec)).To(Succeed())
	})

	It("matches the error shape for an unauthenticated admin call", func() {
		req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/api/v1/admin/applications/pending", nil)
		rec := httptest.NewRecorder()

		newTestRouter().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(validateResponse(ctx, router, req, rec)).To(Succeed())
	})

	It("matches the error shape for a malformed organization id", func() {
		req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/api/v1/organizations/abc", nil)
		rec := httptest.NewRecorder()

		newTestRouter().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(`"error"`))
	})
})

func validateResponse(ctx context.Context, router routers.Router, req *http.Request, rec *httptest.ResponseRecorder) error {
	route, pathParams, err := router.FindRoute(req)
	if err != nil {
		return err
	}

	return openapi3filter.ValidateResponse(ctx, &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
			Options:    &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
		},
		Status: rec.Code,
		Header: rec.Header(),
		Body:   rec.Result().Body,
	})
}
