// Package handler exposes the availability search and registrant
// verification endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"domainly/internal/platform/middleware"
	"domainly/internal/registrar"
	"domainly/internal/transport/http/shared"
	dErrors "domainly/pkg/domainerrors"
)

// Service defines the domain operations the handler delegates to.
type Service interface {
	Search(ctx context.Context, keyword string, extensions []string) ([]registrar.Availability, error)
	VerifyRegistrantEmail(ctx context.Context, domain string) error
}

// Handler handles domain search endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new domains Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the domain routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/list-domains", h.handleListDomains)
	r.Post("/verify-registrant-email/{domain}", h.handleVerifyRegistrantEmail)
}

type listDomainsRequest struct {
	DomainName string   `json:"domain_name"`
	Extensions []string `json:"extensions"`
}

func (h *Handler) handleListDomains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req listDomainsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid list domains request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	available, err := h.service.Search(ctx, req.DomainName, req.Extensions)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"available_domains": available})
}

func (h *Handler) handleVerifyRegistrantEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := chi.URLParam(r, "domain")

	if err := h.service.VerifyRegistrantEmail(ctx, domain); err != nil {
		h.logger.WarnContext(ctx, "registrant verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"domain", domain,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Verification email sent"})
}
