// Package registrar is the REST adapter for the domain registrar API. It is a
// thin request/response client: no retry, no circuit breaking. Failures are
// surfaced as coded upstream errors carrying the registrar's message and
// field-level validation detail verbatim.
package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"domainly/internal/platform/metrics"
	dErrors "domainly/pkg/domainerrors"
)

// The registrar reports prices in micro-units of the currency.
var microUnits = decimal.NewFromInt(1_000_000)

// Config carries the credentials and endpoint for one registrar account.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
}

// Client calls the registrar API. Construct with New; the zero value is not
// usable.
type Client struct {
	cfg     Config
	http    *http.Client
	metrics *metrics.Metrics
}

// New builds a registrar client. httpClient may be nil, in which case a
// client with a default timeout is used.
func New(cfg Config, httpClient *http.Client, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient, metrics: m}
}

// Availability is the registrar's answer for one candidate domain.
type Availability struct {
	Domain    string          `json:"domain"`
	Available bool            `json:"available"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Period    int             `json:"period"`
}

// Agreement is a legal agreement the buyer must accept for a TLD.
type Agreement struct {
	AgreementKey string `json:"agreementKey"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Content      string `json:"content"`
}

// Consent records the buyer's acceptance of the TLD agreements.
type Consent struct {
	AgreedAt      string   `json:"agreedAt"`
	AgreedBy      string   `json:"agreedBy"`
	AgreementKeys []string `json:"agreementKeys"`
}

// MailingAddress is the postal part of a contact.
type MailingAddress struct {
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	State      string `json:"state"`
}

// Contact is one registrar contact role. The same value is reused for the
// admin, billing, registrant and tech roles.
type Contact struct {
	AddressMailing MailingAddress `json:"addressMailing"`
	Email          string         `json:"email"`
	Fax            string         `json:"fax,omitempty"`
	JobTitle       string         `json:"jobTitle,omitempty"`
	NameFirst      string         `json:"nameFirst"`
	NameLast       string         `json:"nameLast"`
	NameMiddle     string         `json:"nameMiddle,omitempty"`
	Organization   string         `json:"organization,omitempty"`
	Phone          string         `json:"phone"`
}

// OrderRequest is the registrar purchase payload. The four contact roles are
// populated from a single Contact value by NewOrderRequest.
type OrderRequest struct {
	Consent           Consent  `json:"consent"`
	ContactAdmin      Contact  `json:"contactAdmin"`
	ContactBilling    Contact  `json:"contactBilling"`
	ContactRegistrant Contact  `json:"contactRegistrant"`
	ContactTech       Contact  `json:"contactTech"`
	Domain            string   `json:"domain"`
	NameServers       []string `json:"nameServers"`
	Period            int      `json:"period"`
	Privacy           bool     `json:"privacy"`
	RenewAuto         bool     `json:"renewAuto"`
}

// NewOrderRequest assembles a purchase payload, referencing the one buyer
// contact for all four roles.
func NewOrderRequest(domain string, period int, contact Contact, consent Consent, nameServers []string) OrderRequest {
	return OrderRequest{
		Consent:           consent,
		ContactAdmin:      contact,
		ContactBilling:    contact,
		ContactRegistrant: contact,
		ContactTech:       contact,
		Domain:            domain,
		NameServers:       nameServers,
		Period:            period,
		Privacy:           false,
		RenewAuto:         true,
	}
}

// OrderConfirmation is the registrar's response to a successful purchase.
type OrderConfirmation struct {
	OrderID   string          `json:"orderId"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	ItemCount int             `json:"itemCount"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fields  any    `json:"fields"`
}

// CheckAvailability queries whether one domain can be registered. The
// registrar's micro-unit price is converted to a currency decimal.
func (c *Client) CheckAvailability(ctx context.Context, domain string) (Availability, error) {
	start := time.Now()
	var raw struct {
		Domain    string `json:"domain"`
		Available bool   `json:"available"`
		Price     int64  `json:"price"`
		Currency  string `json:"currency"`
		Period    int    `json:"period"`
	}
	err := c.get(ctx, "/v1/domains/available?domain="+url.QueryEscape(domain), &raw)
	c.metrics.ObserveProviderCall("registrar", "available", start, err)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		Domain:    raw.Domain,
		Available: raw.Available,
		Price:     decimal.NewFromInt(raw.Price).Div(microUnits),
		Currency:  raw.Currency,
		Period:    raw.Period,
	}, nil
}

// Agreements fetches the legal agreements applicable to the given TLDs.
// Every purchase must carry at least one agreement key from this call.
func (c *Client) Agreements(ctx context.Context, tlds []string, privacy bool) ([]Agreement, error) {
	q := url.Values{}
	for _, tld := range tlds {
		q.Add("tlds", tld)
	}
	q.Set("privacy", fmt.Sprintf("%t", privacy))

	start := time.Now()
	var agreements []Agreement
	err := c.get(ctx, "/v1/domains/agreements?"+q.Encode(), &agreements)
	c.metrics.ObserveProviderCall("registrar", "agreements", start, err)
	if err != nil {
		return nil, err
	}
	return agreements, nil
}

// Purchase submits a registration order. A non-2xx response becomes an
// upstream error keeping the registrar's status, message and fields.
func (c *Client) Purchase(ctx context.Context, order OrderRequest) (OrderConfirmation, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return OrderConfirmation{}, dErrors.Wrap(dErrors.CodeInternal, "encode order", err)
	}

	start := time.Now()
	var confirmation OrderConfirmation
	err = c.do(ctx, http.MethodPost, "/v1/domains/purchase", bytes.NewReader(body), &confirmation)
	c.metrics.ObserveProviderCall("registrar", "purchase", start, err)
	if err != nil {
		return OrderConfirmation{}, err
	}
	return confirmation, nil
}

// VerifyRegistrantEmail asks the registrar to resend the registrant
// verification email for a registered domain.
func (c *Client) VerifyRegistrantEmail(ctx context.Context, domain string) error {
	start := time.Now()
	err := c.do(ctx, http.MethodPost, "/v1/domains/"+url.PathEscape(domain)+"/verifyRegistrantEmail", nil, nil)
	c.metrics.ObserveProviderCall("registrar", "verify_registrant_email", start, err)
	return err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "build registrar request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("sso-key %s:%s", c.cfg.APIKey, c.cfg.APISecret))

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUpstream, "registrar unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUpstream, "read registrar response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorBody
		if jsonErr := json.Unmarshal(data, &e); jsonErr != nil || e.Message == "" {
			e.Message = "registrar request failed"
		}
		return dErrors.Upstream(resp.StatusCode, e.Message, e.Fields)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return dErrors.Wrap(dErrors.CodeUpstream, "decode registrar response", err)
	}
	return nil
}
