// Package handler exposes the purchase endpoints: order submission and the
// per-session purchase listing used for reconciliation.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"domainly/internal/platform/middleware"
	"domainly/internal/purchase"
	"domainly/internal/transport/http/shared"
	dErrors "domainly/pkg/domainerrors"
)

// Service defines the purchase operations the handler delegates to.
type Service interface {
	Purchase(ctx context.Context, in purchase.Input) (purchase.Result, error)
	ListBySession(ctx context.Context, sessionID string) ([]purchase.Purchase, error)
	RecordForSession(ctx context.Context, sessionID string, p purchase.Purchase) (purchase.Purchase, error)
}

// Handler handles purchase-related endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new purchase Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the purchase routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/purchase-domain", h.handlePurchaseDomain)
	r.Get("/purchase-customer-details/{sessionID}", h.handleListPurchases)
	r.Post("/purchase-customer-details/{sessionID}", h.handleCreatePurchase)
}

type purchaseRequest struct {
	DomainName string `json:"domain_name"`
	Email      string `json:"email"`
	Period     int    `json:"period"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Fax        string `json:"fax"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

func (h *Handler) handlePurchaseDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid purchase request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	result, err := h.service.Purchase(ctx, purchase.Input{
		DomainName: req.DomainName,
		Email:      req.Email,
		Period:     req.Period,
		Contact: purchase.Contact{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Phone:      req.Phone,
			Address1:   req.Address1,
			Address2:   req.Address2,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
			Fax:        req.Fax,
		},
		AmountMinor: req.Amount,
		Currency:    req.Currency,
		ClientIP:    clientIP(r),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "purchase failed",
			"request_id", requestID,
			"domain", req.DomainName,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	purchases, err := h.service.ListBySession(r.Context(), sessionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if purchases == nil {
		purchases = []purchase.Purchase{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"purchases": purchases})
}

func (h *Handler) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var p purchase.Purchase
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.service.RecordForSession(r.Context(), sessionID, p)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to record purchase",
			"request_id", middleware.GetRequestID(r.Context()),
			"session_id", sessionID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

// clientIP resolves the acceptor address recorded in the agreement consent.
// X-Forwarded-For may carry the whole proxy chain; only the originating hop
// is the acceptor.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
