// Package handler exposes the checkout endpoints: session creation, session
// listing, CSV export and the payment redirect landing pages.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"domainly/internal/checkout"
	"domainly/internal/platform/middleware"
	"domainly/internal/transport/http/shared"
	dErrors "domainly/pkg/domainerrors"
)

// Service defines the checkout operations the handler delegates to.
type Service interface {
	Create(ctx context.Context, in checkout.CreateInput) (string, error)
	List(ctx context.Context) ([]checkout.Session, error)
	WriteCSV(ctx context.Context, w io.Writer) (int, error)
}

// Handler handles checkout-related endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new checkout Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the checkout routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/checkout-session", h.handleCreateSession)
	r.Get("/checkout-session-details", h.handleListSessions)
	r.Get("/export-checkout-sessions", h.handleExportCSV)
	r.Get("/success", h.handleSuccess)
	r.Get("/cancel", h.handleCancel)
}

type createSessionRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Period      int             `json:"period"`
	Email       string          `json:"email"`
	Currency    string          `json:"currency"`
	DisplayName string          `json:"display_name"`
	Description string          `json:"description"`
}

type createSessionResponse struct {
	Session string `json:"session"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid checkout session request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	redirectURL, err := h.service.Create(ctx, checkout.CreateInput{
		DomainName:  req.Name,
		Price:       req.Price,
		Period:      req.Period,
		Email:       req.Email,
		Currency:    req.Currency,
		DisplayName: req.DisplayName,
		Description: req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create checkout session",
			"request_id", requestID,
			"domain", req.Name,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, createSessionResponse{Session: redirectURL})
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list checkout sessions",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"checkout_sessions": sessions})
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	// Render into a buffer first so a store failure still produces the
	// JSON error body instead of a half-written download.
	var buf bytes.Buffer
	if _, err := h.service.WriteCSV(r.Context(), &buf); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to export checkout sessions",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="checkout_sessions.csv"`)
	_, _ = w.Write(buf.Bytes())
}

// handleSuccess is the landing endpoint the processor redirects to after a
// completed payment.
func (h *Handler) handleSuccess(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"message":    "Payment successful",
		"session_id": r.URL.Query().Get("session_id"),
		"domain":     r.URL.Query().Get("domain"),
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"message":    "Payment cancelled",
		"session_id": r.URL.Query().Get("session_id"),
		"domain":     r.URL.Query().Get("domain"),
	})
}
