package paymentgateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	paymentgatewaytypes "github.com/frahmantamala/ngo-platform/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/ngo-platform/internal/paymentgateway"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPaymentGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Payment Gateway Suite")
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *paymentgateway.Client
		lastForm url.Values
		lastReq  *http.Request
		calls    int
		respond  func(w http.ResponseWriter)
	)

	BeforeEach(func() {
		lastForm, lastReq, calls = nil, nil, 0
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if err := r.ParseForm(); err == nil {
				lastForm = r.PostForm
			}
			lastReq = r
			w.Header().Set("Content-Type", "application/json")
			respond(w)
		}))
		client = paymentgateway.NewClient(paymentgateway.Config{
			SecretKey:  "sk_test_123",
			BackendURL: server.URL,
		}, logger.Discard())
	})

	AfterEach(func() {
		server.Close()
	})

	request := func() *paymentgatewaytypes.CheckoutRequest {
		return &paymentgatewaytypes.CheckoutRequest{
			PaymentID:      42,
			OrganizationID: 7,
			AmountCents:    2500,
			Currency:       "usd",
			Description:    "Donation to Helping Hands",
			CustomerEmail:  "donor@example.org",
			SuccessURL:     "http://localhost:8080/api/v1/donations/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:      "http://localhost:8080/api/v1/donations/cancel?session_id={CHECKOUT_SESSION_ID}",
		}
	}

	It("creates a one-line card checkout session", func() {
		// Given
		respond = func(w http.ResponseWriter) {
			w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.example/cs_test_1","status":"open","payment_status":"unpaid","metadata":{"payment_id":"42"}}`))
		}

		// When
		session, err := client.CreateCheckoutSession(context.Background(), request())

		// Then
		Expect(err).NotTo(HaveOccurred())
		Expect(lastReq.Method).To(Equal(http.MethodPost))
		Expect(lastReq.URL.Path).To(Equal("/v1/checkout/sessions"))
		Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer sk_test_123"))
		Expect(session.ID).To(Equal("cs_test_1"))
		Expect(session.URL).To(Equal("https://checkout.example/cs_test_1"))
		Expect(session.IsPaid()).To(BeFalse())
		Expect(lastForm.Get("mode")).To(Equal("payment"))
		Expect(lastForm.Get("line_items[0][price_data][unit_amount]")).To(Equal("2500"))
		Expect(lastForm.Get("line_items[0][quantity]")).To(Equal("1"))
		Expect(lastForm.Get("metadata[payment_id]")).To(Equal("42"))
		Expect(lastForm.Get("metadata[organization_id]")).To(Equal("7"))
	})

	It("rejects invalid requests before calling the gateway", func() {
		respond = func(w http.ResponseWriter) {}

		req := request()
		req.AmountCents = 0
		_, err := client.CreateCheckoutSession(context.Background(), req)
		Expect(err).To(MatchError(ContainSubstring("amount")))
		Expect(calls).To(BeZero())
	})

	It("retrieves a paid session with its payment intent", func() {
		respond = func(w http.ResponseWriter) {
			w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","status":"complete","payment_status":"paid","payment_intent":"pi_123"}`))
		}

		session, err := client.RetrieveCheckoutSession(context.Background(), "cs_test_1")

		Expect(err).NotTo(HaveOccurred())
		Expect(lastReq.Method).To(Equal(http.MethodGet))
		Expect(lastReq.URL.Path).To(Equal("/v1/checkout/sessions/cs_test_1"))
		Expect(session.IsPaid()).To(BeTrue())
		Expect(session.PaymentIntentID).To(Equal("pi_123"))
	})

	It("flags credential failures as auth errors", func() {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`))
		}

		_, err := client.RetrieveCheckoutSession(context.Background(), "cs_test_1")

		Expect(err).To(HaveOccurred())
		Expect(paymentgatewaytypes.IsAuthError(err)).To(BeTrue())
	})

	It("reports other gateway failures as non-auth errors", func() {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such checkout.session"}}`))
		}

		_, err := client.RetrieveCheckoutSession(context.Background(), "cs_missing")

		Expect(err).To(HaveOccurred())
		Expect(paymentgatewaytypes.IsAuthError(err)).To(BeFalse())
		Expect(strings.Contains(err.Error(), "resource_missing")).To(BeTrue())
	})
})
