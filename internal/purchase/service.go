package purchase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"domainly/internal/audit"
	"domainly/internal/checkout"
	"domainly/internal/platform/metrics"
	"domainly/internal/registrar"
	dErrors "domainly/pkg/domainerrors"
)

var minorUnits = decimal.NewFromInt(100)

// agreementsRequiredMessage mirrors the registrar's own wording for orders
// submitted without agreement keys.
const agreementsRequiredMessage = "End-user must read and consent to all of the following legal agreements: DNRA DNPA"

// defaultFax is sent when the buyer leaves the optional fax field empty; the
// registrar requires the field to be populated.
const defaultFax = "+1.2125551234"

// RegistrarClient is the slice of the registrar adapter the orchestrator
// needs. Agreements may be served by the cached wrapper.
type RegistrarClient interface {
	Agreements(ctx context.Context, tlds []string, privacy bool) ([]registrar.Agreement, error)
	Purchase(ctx context.Context, order registrar.OrderRequest) (registrar.OrderConfirmation, error)
}

// SessionLookup finds the checkout session a purchase must reference.
type SessionLookup interface {
	FindByDomainEmail(ctx context.Context, domain, email string) (checkout.Session, error)
	GetByID(ctx context.Context, sessionID string) (checkout.Session, error)
}

// Service is the purchase orchestrator: it validates buyer input against the
// recorded checkout session, resolves the TLD agreements, submits the
// registrar order and records the outcome.
type Service struct {
	store       Store
	sessions    SessionLookup
	registrar   RegistrarClient
	logger      *slog.Logger
	metrics     *metrics.Metrics
	audit       *audit.Service
	nameServers []string
}

func NewService(
	store Store,
	sessions SessionLookup,
	registrarClient RegistrarClient,
	nameServers []string,
	logger *slog.Logger,
	m *metrics.Metrics,
	auditSvc *audit.Service,
) *Service {
	return &Service{
		store:       store,
		sessions:    sessions,
		registrar:   registrarClient,
		nameServers: nameServers,
		logger:      logger,
		metrics:     m,
		audit:       auditSvc,
	}
}

// Input is the full buyer/contact form.
type Input struct {
	DomainName string
	Email      string
	Period     int
	Contact    Contact
	// AmountMinor is the paid amount in the processor's minor units.
	AmountMinor int64
	Currency    string
	// ClientIP is recorded as the agreement acceptor.
	ClientIP string
}

// Result echoes the registrar's order confirmation to the caller.
type Result struct {
	DomainName string          `json:"domain_name"`
	Status     string          `json:"status"`
	OrderID    string          `json:"order_id"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	ItemCount  int             `json:"item_count"`
}

// Purchase runs the order workflow. Validation happens strictly before any
// registrar call; a failed registrar order writes no Purchase row. There is
// no compensating refund when the registrar rejects an already-paid order;
// the failure is only recorded for reconciliation.
func (s *Service) Purchase(ctx context.Context, in Input) (Result, error) {
	if err := validateInput(in); err != nil {
		return Result{}, err
	}

	session, err := s.sessions.FindByDomainEmail(ctx, in.DomainName, in.Email)
	if err != nil {
		if errors.Is(err, checkout.ErrNotFound) {
			return Result{}, dErrors.New(dErrors.CodeNotFound, "invalid checkout session")
		}
		return Result{}, dErrors.Wrap(dErrors.CodeInternal, "look up checkout session", err)
	}

	tld := in.DomainName[strings.LastIndex(in.DomainName, ".")+1:]
	agreements, err := s.registrar.Agreements(ctx, []string{tld}, false)
	if err != nil {
		return Result{}, err
	}
	if len(agreements) == 0 || agreements[0].AgreementKey == "" {
		return Result{}, dErrors.New(dErrors.CodeBadRequest, agreementsRequiredMessage)
	}
	keys := make([]string, 0, len(agreements))
	for _, agreement := range agreements {
		keys = append(keys, agreement.AgreementKey)
	}

	contact := in.Contact
	if contact.Fax == "" {
		contact.Fax = defaultFax
	}

	order := registrar.NewOrderRequest(in.DomainName, in.Period, registrar.Contact{
		AddressMailing: registrar.MailingAddress{
			Address1:   contact.Address1,
			Address2:   contact.Address2,
			City:       contact.City,
			Country:    contact.Country,
			PostalCode: contact.PostalCode,
			State:      contact.State,
		},
		Email:     in.Email,
		Fax:       contact.Fax,
		NameFirst: contact.FirstName,
		NameLast:  contact.LastName,
		Phone:     contact.Phone,
	}, registrar.Consent{
		AgreedAt:      time.Now().UTC().Format(time.RFC3339),
		AgreedBy:      in.ClientIP,
		AgreementKeys: keys,
	}, s.nameServers)

	confirmation, err := s.registrar.Purchase(ctx, order)
	if err != nil {
		// The payment for this session may already be captured. Nothing is
		// refunded here; the failure event carries the session id so the
		// order can be reconciled manually.
		s.logger.ErrorContext(ctx, "registrar order failed after checkout",
			"session_id", session.SessionID,
			"domain", in.DomainName,
			"error", err.Error(),
		)
		s.metrics.IncPurchase(string(StatusFailed))
		s.audit.Record(audit.Event{
			Action:     audit.ActionPurchaseFailed,
			SessionID:  session.SessionID,
			DomainName: in.DomainName,
			Email:      in.Email,
			Reason:     dErrors.From(err).Message,
		})
		return Result{}, err
	}

	status := StatusSuccess
	if confirmation.Status == string(StatusPending) {
		status = StatusPending
	}

	record := Purchase{
		OrderID:   confirmation.OrderID,
		SessionID: session.SessionID,
		Contact:   contact,
		Amount:    decimal.NewFromInt(in.AmountMinor).Div(minorUnits),
		Currency:  in.Currency,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, record); err != nil {
		return Result{}, dErrors.Wrap(dErrors.CodeInternal, "persist purchase", err)
	}

	s.metrics.IncPurchase(string(status))
	s.audit.Record(audit.Event{
		Action:     audit.ActionPurchaseSuccess,
		SessionID:  session.SessionID,
		OrderID:    record.OrderID,
		DomainName: in.DomainName,
		Email:      in.Email,
		Amount:     record.Amount.String(),
		Currency:   record.Currency,
	})

	return Result{
		DomainName: in.DomainName,
		Status:     confirmation.Status,
		OrderID:    confirmation.OrderID,
		Total:      confirmation.Total,
		Currency:   confirmation.Currency,
		ItemCount:  confirmation.ItemCount,
	}, nil
}

// ListBySession returns the purchases recorded against one checkout session.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]Purchase, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, checkout.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "invalid checkout session")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "look up checkout session", err)
	}
	purchases, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list purchases", err)
	}
	return purchases, nil
}

// RecordForSession persists a caller-supplied purchase row scoped to an
// existing session, for back-office reconciliation entries.
func (s *Service) RecordForSession(ctx context.Context, sessionID string, p Purchase) (Purchase, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, checkout.ErrNotFound) {
			return Purchase{}, dErrors.New(dErrors.CodeNotFound, "invalid checkout session")
		}
		return Purchase{}, dErrors.Wrap(dErrors.CodeInternal, "look up checkout session", err)
	}
	if p.OrderID == "" {
		return Purchase{}, dErrors.New(dErrors.CodeBadRequest, "order_id is required")
	}
	if !isValidStatus(p.Status) {
		return Purchase{}, dErrors.New(dErrors.CodeBadRequest, "status must be PENDING, SUCCESS or FAILED")
	}
	p.SessionID = sessionID
	p.CreatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, p); err != nil {
		return Purchase{}, dErrors.Wrap(dErrors.CodeInternal, "persist purchase", err)
	}
	return p, nil
}

func validateInput(in Input) error {
	required := map[string]string{
		"domain_name": in.DomainName,
		"email":       in.Email,
		"first_name":  in.Contact.FirstName,
		"last_name":   in.Contact.LastName,
		"phone":       in.Contact.Phone,
		"address1":    in.Contact.Address1,
		"city":        in.Contact.City,
		"state":       in.Contact.State,
		"postal_code": in.Contact.PostalCode,
		"country":     in.Contact.Country,
	}
	for _, value := range required {
		if strings.TrimSpace(value) == "" {
			return dErrors.New(dErrors.CodeBadRequest, "all fields are required")
		}
	}
	if in.Period <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "period must be a positive number of years")
	}
	if !strings.Contains(in.DomainName, ".") {
		return dErrors.New(dErrors.CodeBadRequest, "domain_name must include an extension")
	}
	if in.AmountMinor <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be a positive integer")
	}
	return nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}
