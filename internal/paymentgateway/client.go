package paymentgateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/ngo-platform/internal/core/datamodel/paymentgateway"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type Config struct {
	SecretKey string
	// BackendURL overrides the gateway API base, used against local mocks.
	BackendURL        string
	Timeout           time.Duration
	MaxNetworkRetries int64
}

// Client talks to the Stripe Checkout API.
type Client struct {
	api    *client.API
	logger *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(config.MaxNetworkRetries),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if config.BackendURL != "" {
		backendConfig.URL = stripe.String(config.BackendURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}

	logger.Info("payment gateway client configured",
		"timeout", timeout,
		"custom_backend", config.BackendURL != "")

	return &Client{
		api:    client.New(config.SecretKey, backends),
		logger: logger,
	}
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req *paymentgatewaytypes.CheckoutRequest) (*paymentgatewaytypes.CheckoutSession, error) {
	if err := req.Validate(); err != nil {
		c.logger.Error("checkout request validation failed", "error", err)
		return nil, fmt.Errorf("validation error: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatInt(req.PaymentID, 10)),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("payment_id", strconv.FormatInt(req.PaymentID, 10))
	params.AddMetadata("organization_id", strconv.FormatInt(req.OrganizationID, 10))

	c.logger.Info("creating checkout session",
		"payment_id", req.PaymentID,
		"organization_id", req.OrganizationID,
		"amount_cents", req.AmountCents,
		"currency", req.Currency)

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, c.wrap("create checkout session", err)
	}

	c.logger.Info("checkout session created", "payment_id", req.PaymentID, "session_id", session.ID)
	return toCheckoutSession(session), nil
}

func (c *Client) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*paymentgatewaytypes.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, c.wrap("retrieve checkout session", err)
	}

	return toCheckoutSession(session), nil
}

func (c *Client) wrap(op string, err error) error {
	gwErr := &paymentgatewaytypes.Error{Op: op, Err: err}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		gwErr.Code = string(stripeErr.Code)
		gwErr.HTTPStatus = stripeErr.HTTPStatusCode
		gwErr.Auth = stripeErr.HTTPStatusCode == http.StatusUnauthorized
	}

	if gwErr.Auth {
		c.logger.Error("critical: payment gateway rejected credentials", "op", op, "error", err)
	} else {
		c.logger.Error("payment gateway call failed", "op", op, "error", err, "status", gwErr.HTTPStatus)
	}
	return gwErr
}

func toCheckoutSession(s *stripe.CheckoutSession) *paymentgatewaytypes.CheckoutSession {
	out := &paymentgatewaytypes.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}
