// Package payments is the payment processor adapter. It wraps the Stripe SDK
// behind a small surface so orchestrators never touch SDK types directly,
// and so credentials live in an explicit config instead of the SDK's
// package-level key.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/stripe/stripe-go/v79"
	stripeclient "github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"domainly/internal/platform/metrics"
	dErrors "domainly/pkg/domainerrors"
)

// EventCheckoutCompleted is the processor event type that marks a paid
// checkout session.
const EventCheckoutCompleted = "checkout.session.completed"

// Config carries the processor credentials and the public base URL used to
// build redirect callbacks.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PublicBaseURL string
}

// Client talks to the payment processor.
type Client struct {
	cfg     Config
	api     *stripeclient.API
	metrics *metrics.Metrics
}

// New builds a processor client with its own API handle.
func New(cfg Config, m *metrics.Metrics) *Client {
	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, nil)
	return &Client{cfg: cfg, api: api, metrics: m}
}

// SessionParams describes one redirect-based payment flow for a domain.
type SessionParams struct {
	DomainName  string
	Email       string
	PeriodYears int
	// AmountMinor is the price in the processor's minor-unit representation.
	AmountMinor int64
	Currency    string
	DisplayName string
	Description string
}

// Session is the created payment session.
type Session struct {
	ID  string
	URL string
}

// CreateSession creates a processor-hosted payment flow and returns its id
// and redirect URL. The success and cancel callbacks carry the session id
// and the domain metadata as query parameters.
func (c *Client) CreateSession(ctx context.Context, p SessionParams) (Session, error) {
	name := p.DisplayName
	if name == "" {
		name = "Domain registration: " + p.DomainName
	}

	meta := url.Values{}
	meta.Set("domain", p.DomainName)
	meta.Set("email", p.Email)
	meta.Set("period", fmt.Sprintf("%d", p.PeriodYears))

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(p.Email),
		SuccessURL:    stripe.String(c.cfg.PublicBaseURL + "/success?session_id={CHECKOUT_SESSION_ID}&" + meta.Encode()),
		CancelURL:     stripe.String(c.cfg.PublicBaseURL + "/cancel?session_id={CHECKOUT_SESSION_ID}&" + meta.Encode()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.Currency),
				UnitAmount: stripe.Int64(p.AmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(name),
					Description: stripe.String(p.Description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if p.Description == "" {
		params.LineItems[0].PriceData.ProductData.Description = nil
	}
	params.Context = ctx

	start := time.Now()
	sess, err := c.api.CheckoutSessions.New(params)
	c.metrics.ObserveProviderCall("payments", "create_session", start, err)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return Session{}, dErrors.Upstream(stripeErr.HTTPStatusCode, stripeErr.Msg, nil)
		}
		return Session{}, dErrors.Wrap(dErrors.CodeUpstream, "create payment session", err)
	}
	return Session{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyWebhook validates an asynchronous delivery against the shared
// webhook secret and returns the decoded event.
func (c *Client) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.cfg.WebhookSecret)
	if err != nil {
		return stripe.Event{}, dErrors.Wrap(dErrors.CodeSignature, "invalid webhook signature", err)
	}
	return event, nil
}
