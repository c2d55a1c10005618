package checkout

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainly/internal/payments"
	dErrors "domainly/pkg/domainerrors"
)

type stubPayments struct {
	lastParams payments.SessionParams
	session    payments.Session
	err        error
	calls      int
}

func (s *stubPayments) CreateSession(_ context.Context, p payments.SessionParams) (payments.Session, error) {
	s.calls++
	s.lastParams = p
	if s.err != nil {
		return payments.Session{}, s.err
	}
	return s.session, nil
}

func validInput() CreateInput {
	return CreateInput{
		DomainName: "example.com",
		Price:      decimal.RequireFromString("12.00"),
		Period:     1,
		Email:      "a@b.com",
	}
}

func TestCreatePersistsSessionWithProcessorID(t *testing.T) {
	store := NewInMemoryStore()
	processor := &stubPayments{session: payments.Session{ID: "cs_test_123", URL: "https://pay.example/cs_test_123"}}
	svc := NewService(store, processor, nil, nil)

	url, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_test_123", url)

	// Price is converted to the processor's minor units.
	assert.Equal(t, int64(1200), processor.lastParams.AmountMinor)

	sessions, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "cs_test_123", sessions[0].SessionID)
	assert.Equal(t, "example.com", sessions[0].DomainName)
	assert.Equal(t, "a@b.com", sessions[0].Email)
	assert.False(t, sessions[0].CreatedAt.IsZero())
}

func TestCreateProcessorFailureWritesNothing(t *testing.T) {
	store := NewInMemoryStore()
	processor := &stubPayments{err: dErrors.Upstream(402, "card declined", nil)}
	svc := NewService(store, processor, nil, nil)

	_, err := svc.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUpstream))

	sessions, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing domain", func(in *CreateInput) { in.DomainName = "" }},
		{"missing email", func(in *CreateInput) { in.Email = "  " }},
		{"zero period", func(in *CreateInput) { in.Period = 0 }},
		{"negative price", func(in *CreateInput) { in.Price = decimal.RequireFromString("-1") }},
		{"zero price", func(in *CreateInput) { in.Price = decimal.Zero }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := &stubPayments{}
			svc := NewService(NewInMemoryStore(), processor, nil, nil)

			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			require.Error(t, err)
			assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
			// Rejected before any processor call.
			assert.Zero(t, processor.calls)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	store := NewInMemoryStore()
	processor := &stubPayments{session: payments.Session{ID: "cs_1", URL: "u"}}
	svc := NewService(store, processor, nil, nil)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	processor.session = payments.Session{ID: "cs_2", URL: "u"}
	in := validInput()
	in.DomainName = "example.org"
	_, err = svc.Create(context.Background(), in)
	require.NoError(t, err)

	var buf bytes.Buffer
	count, err := svc.WriteCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"session_id", "domain_name", "email", "period", "price", "currency", "created_at"}, records[0])
	assert.Equal(t, "cs_1", records[1][0])
	assert.Equal(t, "12.00", records[1][4])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, records[1][6])
}

func TestWriteCSVStoreError(t *testing.T) {
	svc := NewService(failingStore{}, &stubPayments{}, nil, nil)
	var buf bytes.Buffer
	_, err := svc.WriteCSV(context.Background(), &buf)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
}

type failingStore struct{}

func (failingStore) Save(context.Context, Session) error { return errors.New("boom") }
func (failingStore) GetByID(context.Context, string) (Session, error) {
	return Session{}, errors.New("boom")
}
func (failingStore) FindByDomainEmail(context.Context, string, string) (Session, error) {
	return Session{}, errors.New("boom")
}
func (failingStore) List(context.Context) ([]Session, error) { return nil, errors.New("boom") }
