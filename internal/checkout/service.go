package checkout

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"domainly/internal/audit"
	"domainly/internal/payments"
	"domainly/internal/platform/metrics"
	dErrors "domainly/pkg/domainerrors"
)

var hundred = decimal.NewFromInt(100)

// csvTimeFormat is the created-at format used in the export.
const csvTimeFormat = "2006-01-02 15:04:05"

// PaymentClient is the slice of the processor adapter the orchestrator needs.
type PaymentClient interface {
	CreateSession(ctx context.Context, p payments.SessionParams) (payments.Session, error)
}

// Service is the checkout orchestrator: it builds a payment session for a
// domain, records it, and exposes the recorded trail.
type Service struct {
	store    Store
	payments PaymentClient
	metrics  *metrics.Metrics
	audit    *audit.Service
}

func NewService(store Store, payments PaymentClient, m *metrics.Metrics, auditSvc *audit.Service) *Service {
	return &Service{store: store, payments: payments, metrics: m, audit: auditSvc}
}

// CreateInput is the buyer's checkout request.
type CreateInput struct {
	DomainName  string
	Price       decimal.Decimal
	Period      int
	Email       string
	Currency    string
	DisplayName string
	Description string
}

// Create starts a payment session and persists its record. The session row
// is written only after the processor issues an id, so a processor failure
// leaves no partial state.
func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	if strings.TrimSpace(in.DomainName) == "" || strings.TrimSpace(in.Email) == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "name and email are required")
	}
	if in.Period <= 0 {
		return "", dErrors.New(dErrors.CodeBadRequest, "period must be a positive number of years")
	}
	if !in.Price.IsPositive() {
		return "", dErrors.New(dErrors.CodeBadRequest, "price must be positive")
	}
	currency := in.Currency
	if currency == "" {
		currency = "usd"
	}

	session, err := s.payments.CreateSession(ctx, payments.SessionParams{
		DomainName:  in.DomainName,
		Email:       in.Email,
		PeriodYears: in.Period,
		AmountMinor: in.Price.Mul(hundred).Round(0).IntPart(),
		Currency:    currency,
		DisplayName: in.DisplayName,
		Description: in.Description,
	})
	if err != nil {
		return "", err
	}

	record := Session{
		SessionID:  session.ID,
		DomainName: in.DomainName,
		Email:      in.Email,
		Period:     in.Period,
		Price:      in.Price,
		Currency:   currency,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Save(ctx, record); err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "persist checkout session", err)
	}

	s.metrics.IncSessionCreated()
	s.audit.Record(audit.Event{
		Action:     audit.ActionCheckoutCreated,
		SessionID:  record.SessionID,
		DomainName: record.DomainName,
		Email:      record.Email,
		Amount:     record.Price.String(),
		Currency:   record.Currency,
	})
	return session.URL, nil
}

// List returns every recorded session.
func (s *Service) List(ctx context.Context) ([]Session, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list checkout sessions", err)
	}
	return sessions, nil
}

// WriteCSV renders every session as one CSV row in a fixed column order and
// returns the row count (header excluded).
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) (int, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "list checkout sessions", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"session_id", "domain_name", "email", "period", "price", "currency", "created_at"}); err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "write csv header", err)
	}
	for _, session := range sessions {
		row := []string{
			session.SessionID,
			session.DomainName,
			session.Email,
			strconv.Itoa(session.Period),
			session.Price.StringFixed(2),
			session.Currency,
			session.CreatedAt.UTC().Format(csvTimeFormat),
		}
		if err := cw.Write(row); err != nil {
			return 0, dErrors.Wrap(dErrors.CodeInternal, "write csv row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "flush csv", err)
	}
	return len(sessions), nil
}
