package purchase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainly/internal/checkout"
	"domainly/internal/registrar"
	dErrors "domainly/pkg/domainerrors"
)

type stubRegistrar struct {
	agreements     []registrar.Agreement
	agreementsErr  error
	confirmation   registrar.OrderConfirmation
	purchaseErr    error
	purchaseCalls  int
	lastOrder      registrar.OrderRequest
	agreementCalls int
}

func (s *stubRegistrar) Agreements(_ context.Context, _ []string, _ bool) ([]registrar.Agreement, error) {
	s.agreementCalls++
	return s.agreements, s.agreementsErr
}

func (s *stubRegistrar) Purchase(_ context.Context, order registrar.OrderRequest) (registrar.OrderConfirmation, error) {
	s.purchaseCalls++
	s.lastOrder = order
	if s.purchaseErr != nil {
		return registrar.OrderConfirmation{}, s.purchaseErr
	}
	return s.confirmation, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, reg *stubRegistrar) (*Service, *InMemoryStore, *checkout.InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	sessions := checkout.NewInMemoryStore()
	svc := NewService(store, sessions, reg, []string{"ns01.domaincontrol.com", "ns02.domaincontrol.com"}, discardLogger(), nil, nil)
	return svc, store, sessions
}

func seedSession(t *testing.T, sessions *checkout.InMemoryStore) {
	t.Helper()
	require.NoError(t, sessions.Save(context.Background(), checkout.Session{
		SessionID:  "cs_test_123",
		DomainName: "example.com",
		Email:      "a@b.com",
		Period:     1,
		CreatedAt:  time.Now().UTC(),
	}))
}

func validPurchaseInput() Input {
	return Input{
		DomainName: "example.com",
		Email:      "a@b.com",
		Period:     1,
		Contact: Contact{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Phone:      "+1.2025550100",
			Address1:   "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
			Country:    "US",
		},
		AmountMinor: 1200,
		Currency:    "USD",
		ClientIP:    "203.0.113.7",
	}
}

func successAgreements() []registrar.Agreement {
	return []registrar.Agreement{{AgreementKey: "DNRA"}}
}

func TestPurchaseHappyPath(t *testing.T) {
	reg := &stubRegistrar{
		agreements:   successAgreements(),
		confirmation: registrar.OrderConfirmation{OrderID: "ORD1", Status: "SUCCESS", Currency: "USD", ItemCount: 1},
	}
	svc, store, sessions := newTestService(t, reg)
	seedSession(t, sessions)

	result, err := svc.Purchase(context.Background(), validPurchaseInput())
	require.NoError(t, err)
	assert.Equal(t, "ORD1", result.OrderID)
	assert.Equal(t, "SUCCESS", result.Status)
	assert.Equal(t, "example.com", result.DomainName)

	purchases, err := store.ListBySession(context.Background(), "cs_test_123")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, StatusSuccess, purchases[0].Status)
	assert.Equal(t, "ORD1", purchases[0].OrderID)
	assert.Equal(t, "12", purchases[0].Amount.String())

	// All four contact roles are the same buyer contact.
	assert.Equal(t, reg.lastOrder.ContactAdmin, reg.lastOrder.ContactRegistrant)
	assert.Equal(t, reg.lastOrder.ContactBilling, reg.lastOrder.ContactTech)
	assert.Equal(t, "Ada", reg.lastOrder.ContactAdmin.NameFirst)
	assert.Equal(t, []string{"DNRA"}, reg.lastOrder.Consent.AgreementKeys)
	assert.Equal(t, "203.0.113.7", reg.lastOrder.Consent.AgreedBy)
	assert.True(t, reg.lastOrder.RenewAuto)
	// The optional fax falls back to the registrar-required default.
	assert.NotEmpty(t, reg.lastOrder.ContactAdmin.Fax)
}

func TestPurchaseNoMatchingSessionRejectedBeforeRegistrarCall(t *testing.T) {
	reg := &stubRegistrar{agreements: successAgreements()}
	svc, store, _ := newTestService(t, reg)

	_, err := svc.Purchase(context.Background(), validPurchaseInput())
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.Equal(t, "invalid checkout session", dErrors.From(err).Message)
	assert.Zero(t, reg.agreementCalls)
	assert.Zero(t, reg.purchaseCalls)

	purchases, err := store.ListBySession(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.Empty(t, purchases)
}

func TestPurchaseNonPositiveAmountRejected(t *testing.T) {
	for _, amount := range []int64{0, -100} {
		reg := &stubRegistrar{agreements: successAgreements()}
		svc, _, sessions := newTestService(t, reg)
		seedSession(t, sessions)

		in := validPurchaseInput()
		in.AmountMinor = amount
		_, err := svc.Purchase(context.Background(), in)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
		assert.Zero(t, reg.purchaseCalls)
	}
}

func TestPurchaseMissingFieldsRejected(t *testing.T) {
	reg := &stubRegistrar{agreements: successAgreements()}
	svc, _, sessions := newTestService(t, reg)
	seedSession(t, sessions)

	in := validPurchaseInput()
	in.Contact.City = ""
	_, err := svc.Purchase(context.Background(), in)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	assert.Equal(t, "all fields are required", dErrors.From(err).Message)
}

func TestPurchaseEmptyAgreementsRejected(t *testing.T) {
	reg := &stubRegistrar{agreements: nil}
	svc, store, sessions := newTestService(t, reg)
	seedSession(t, sessions)

	_, err := svc.Purchase(context.Background(), validPurchaseInput())
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
	assert.Zero(t, reg.purchaseCalls)

	purchases, listErr := store.ListBySession(context.Background(), "cs_test_123")
	require.NoError(t, listErr)
	assert.Empty(t, purchases)
}

func TestPurchaseRegistrarFailurePersistsNothing(t *testing.T) {
	fields := map[string]any{"contactAdmin.phone": "invalid format"}
	reg := &stubRegistrar{
		agreements:  successAgreements(),
		purchaseErr: dErrors.Upstream(422, "Invalid phone number", fields),
	}
	svc, store, sessions := newTestService(t, reg)
	seedSession(t, sessions)

	_, err := svc.Purchase(context.Background(), validPurchaseInput())
	require.Error(t, err)

	// The registrar's message and field detail survive verbatim.
	e := dErrors.From(err)
	assert.Equal(t, "Invalid phone number", e.Message)
	assert.Equal(t, 422, e.UpstreamStatus)
	assert.Equal(t, fields, e.Fields)

	purchases, listErr := store.ListBySession(context.Background(), "cs_test_123")
	require.NoError(t, listErr)
	assert.Empty(t, purchases)
}

func TestPurchasePendingStatusFromRegistrar(t *testing.T) {
	reg := &stubRegistrar{
		agreements:   successAgreements(),
		confirmation: registrar.OrderConfirmation{OrderID: "ORD2", Status: "PENDING"},
	}
	svc, store, sessions := newTestService(t, reg)
	seedSession(t, sessions)

	_, err := svc.Purchase(context.Background(), validPurchaseInput())
	require.NoError(t, err)

	purchases, err := store.ListBySession(context.Background(), "cs_test_123")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, StatusPending, purchases[0].Status)
}

func TestListBySessionUnknownSession(t *testing.T) {
	svc, _, _ := newTestService(t, &stubRegistrar{})
	_, err := svc.ListBySession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestRecordForSession(t *testing.T) {
	svc, store, sessions := newTestService(t, &stubRegistrar{})
	seedSession(t, sessions)

	created, err := svc.RecordForSession(context.Background(), "cs_test_123", Purchase{
		OrderID: "ORD9",
		Status:  StatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", created.SessionID)
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := store.GetByOrderID(context.Background(), "ORD9")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
}

func TestRecordForSessionInvalidStatus(t *testing.T) {
	svc, _, sessions := newTestService(t, &stubRegistrar{})
	seedSession(t, sessions)

	_, err := svc.RecordForSession(context.Background(), "cs_test_123", Purchase{OrderID: "ORD9", Status: "UNKNOWN"})
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}
