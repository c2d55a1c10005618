package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainly/internal/registrar"
	dErrors "domainly/pkg/domainerrors"
	"domainly/pkg/testutil"
)

type stubService struct {
	available      []registrar.Availability
	searchErr      error
	lastKeyword    string
	lastExtensions []string

	verifiedDomain string
	verifyErr      error
}

func (s *stubService) Search(_ context.Context, keyword string, extensions []string) ([]registrar.Availability, error) {
	s.lastKeyword = keyword
	s.lastExtensions = extensions
	return s.available, s.searchErr
}

func (s *stubService) VerifyRegistrantEmail(_ context.Context, domain string) error {
	s.verifiedDomain = domain
	return s.verifyErr
}

func newTestRouter(t *testing.T, svc *stubService) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(svc, logger)

	r := chi.NewRouter()
	handler.Register(r)
	return r
}

func TestListDomains(t *testing.T) {
	svc := &stubService{available: []registrar.Availability{
		{Domain: "example.com", Available: true, Price: decimal.RequireFromString("11.99"), Currency: "USD", Period: 1},
	}}
	router := newTestRouter(t, svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/list-domains", map[string]any{
		"domain_name": "example",
		"extensions":  []string{".com", ".org"},
	})
	rr := testutil.DoRequest(router, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "example", svc.lastKeyword)
	assert.Equal(t, []string{".com", ".org"}, svc.lastExtensions)

	body := testutil.UnmarshalResponse[map[string][]registrar.Availability](t, rr)
	require.Len(t, (*body)["available_domains"], 1)
	assert.Equal(t, "example.com", (*body)["available_domains"][0].Domain)
}

func TestListDomainsInvalidBody(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/list-domains", nil)
	rr := testutil.DoRequest(router, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	testutil.AssertErrorMessage(t, rr, "invalid request body")
}

func TestVerifyRegistrantEmail(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/verify-registrant-email/example.com", nil)
	rr := testutil.DoRequest(router, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "example.com", svc.verifiedDomain)
	body := testutil.UnmarshalResponse[map[string]string](t, rr)
	assert.Equal(t, "Verification email sent", (*body)["message"])
}

func TestVerifyRegistrantEmailUpstreamError(t *testing.T) {
	svc := &stubService{verifyErr: dErrors.Upstream(422, "domain not registered here", nil)}
	router := newTestRouter(t, svc)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/verify-registrant-email/example.com", nil)
	rr := testutil.DoRequest(router, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	testutil.AssertErrorMessage(t, rr, "domain not registered here")
}
