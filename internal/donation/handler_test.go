package donation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/ngo-platform/internal/donation"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockService struct {
	intentErr    error
	checkoutErr  error
	reconcileErr error

	lastToken   string
	lastSession string
	lastOutcome donation.Outcome
}

func (m *mockService) CaptureIntent(ctx context.Context, organizationID int64, dto donation.IntentDTO) (*donation.Intent, string, error) {
	if m.intentErr != nil {
		return nil, "", m.intentErr
	}
	return &donation.Intent{
		OrganizationID: organizationID,
		DonorEmail:     dto.DonorEmail,
		Amount:         dto.Amount,
		ExpiresAt:      time.Now().Add(30 * time.Minute),
	}, "signed-intent", nil
}

func (m *mockService) CreateCheckout(ctx context.Context, intentToken string) (*donation.Checkout, error) {
	m.lastToken = intentToken
	if m.checkoutErr != nil {
		return nil, m.checkoutErr
	}
	return &donation.Checkout{PaymentID: 1, SessionID: "cs_test_1", CheckoutURL: "https://checkout.example.com/cs_test_1"}, nil
}

func (m *mockService) Reconcile(ctx context.Context, sessionID string, outcome donation.Outcome) (*donation.Payment, error) {
	m.lastSession, m.lastOutcome = sessionID, outcome
	if m.reconcileErr != nil {
		return nil, m.reconcileErr
	}
	return &donation.Payment{ID: 1, Status: "SUCCESS", Amount: "25.00"}, nil
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ = Describe("Handler", func() {
	var (
		svc    *mockService
		router *chi.Mux
	)

	BeforeEach(func() {
		svc = &mockService{}
		h := donation.NewHandler(svc, true)
		router = chi.NewRouter()
		router.Post("/organizations/{id}/donations", h.CaptureIntent)
		router.Post("/donations/checkout", h.CreateCheckout)
		router.Get("/donations/success", h.Success)
		router.Get("/donations/cancel", h.Cancel)
	})

	intentCookie := func(rec *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range rec.Result().Cookies() {
			if c.Name == donation.IntentCookieName {
				return c
			}
		}
		return nil
	}

	It("stores the intent in an HttpOnly cookie", func() {
		req := httptest.NewRequest(http.MethodPost, "/organizations/5/donations",
			strings.NewReader(`{"donor_email":"donor@example.org","amount":"25.00"}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		cookie := intentCookie(rec)
		Expect(cookie).NotTo(BeNil())
		Expect(cookie.Value).To(Equal("signed-intent"))
		Expect(cookie.HttpOnly).To(BeTrue())
		Expect(cookie.Secure).To(BeTrue())
	})

	It("clears the cookie after a successful checkout", func() {
		req := httptest.NewRequest(http.MethodPost, "/donations/checkout", nil)
		req.AddCookie(&http.Cookie{Name: donation.IntentCookieName, Value: "signed-intent"})
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(svc.lastToken).To(Equal("signed-intent"))
		Expect(intentCookie(rec).MaxAge).To(BeNumerically("<", 0))

		var checkout donation.Checkout
		Expect(json.Unmarshal(rec.Body.Bytes(), &checkout)).To(Succeed())
		Expect(checkout.CheckoutURL).To(ContainSubstring("cs_test_1"))
	})

	It("keeps the cookie and answers 502 when the gateway fails", func() {
		svc.checkoutErr = donation.ErrGatewayUnavailable
		req := httptest.NewRequest(http.MethodPost, "/donations/checkout", nil)
		req.AddCookie(&http.Cookie{Name: donation.IntentCookieName, Value: "signed-intent"})
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusBadGateway))
		Expect(intentCookie(rec)).To(BeNil())

		var body errorBody
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Error.Message).To(Equal("Payment gateway error. Please try again."))
	})

	It("reconciles the success callback", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/donations/success?session_id=cs_test_1", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastSession).To(Equal("cs_test_1"))
		Expect(svc.lastOutcome).To(Equal(donation.OutcomeSuccess))
	})

	It("reconciles the cancel callback as a failure", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/donations/cancel?session_id=cs_test_1", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastOutcome).To(Equal(donation.OutcomeFailure))
	})

	It("answers 202 while the payment is not settled", func() {
		svc.reconcileErr = donation.ErrPaymentNotSettled
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/donations/success?session_id=cs_test_1", nil))

		Expect(rec.Code).To(Equal(http.StatusAccepted))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"pending"`))
		Expect(rec.Body.String()).To(ContainSubstring(donation.PendingMessage))
	})

	It("answers an ambiguous 400 without a session id", func() {
		svc.reconcileErr = donation.ErrSessionIDMissing
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/donations/success", nil))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		var body errorBody
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Error.Message).To(Equal(donation.AmbiguousMessage))
	})

	It("answers 404 with the ambiguous message for an unknown session", func() {
		svc.reconcileErr = donation.ErrPaymentNotFound
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/donations/success?session_id=cs_unknown", nil))

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring(donation.AmbiguousMessage))
	})
})
