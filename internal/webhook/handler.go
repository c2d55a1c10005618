// Package webhook receives asynchronous payment-completion events from the
// processor. Deliveries are verified against the shared webhook secret;
// anything validly signed is acknowledged with 2xx because the processor
// retries on other statuses.
package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v79"

	"domainly/internal/audit"
	"domainly/internal/payments"
	"domainly/internal/platform/metrics"
	"domainly/internal/platform/middleware"
	"domainly/internal/transport/http/shared"
	dErrors "domainly/pkg/domainerrors"
)

// maxBodyBytes bounds webhook payload reads; Stripe's own limit is 64KB.
const maxBodyBytes = 1 << 16

// Verifier validates a delivery and decodes its event.
type Verifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// Handler handles the processor webhook endpoint.
type Handler struct {
	logger   *slog.Logger
	verifier Verifier
	metrics  *metrics.Metrics
	audit    *audit.Service
}

// New creates a new webhook Handler.
func New(verifier Verifier, logger *slog.Logger, m *metrics.Metrics, auditSvc *audit.Service) *Handler {
	return &Handler{logger: logger, verifier: verifier, metrics: m, audit: auditSvc}
}

// Register mounts the webhook route on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/stripe-webhook", h.handleWebhook)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.metrics.IncWebhook("read_error")
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unable to read payload"))
		return
	}

	event, err := h.verifier.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.WarnContext(ctx, "webhook rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		h.metrics.IncWebhook("rejected")
		shared.WriteError(w, err)
		return
	}

	if string(event.Type) != payments.EventCheckoutCompleted {
		// Acknowledged but otherwise ignored.
		h.metrics.IncWebhook("ignored")
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	var session struct {
		ID            string `json:"id"`
		CustomerEmail string `json:"customer_email"`
		AmountTotal   int64  `json:"amount_total"`
		Currency      string `json:"currency"`
	}
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.metrics.IncWebhook("malformed")
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed event payload"))
		return
	}

	h.logger.InfoContext(ctx, "checkout session completed",
		"request_id", requestID,
		"session_id", session.ID,
		"email", session.CustomerEmail,
	)
	h.metrics.IncWebhook("completed")
	h.audit.Record(audit.Event{
		Action:    audit.ActionPaymentCompleted,
		SessionID: session.ID,
		Email:     session.CustomerEmail,
	})

	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
