// Package httptransport assembles the public HTTP surface. It is a thin
// layer: every route delegates to a domain handler so transport concerns
// stay out of business logic.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"domainly/internal/platform/middleware"
	"domainly/internal/transport/http/shared"
)

// RouteRegistrar is implemented by each domain handler group.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether the backing dependencies are reachable.
// A nil check means no dependency needs probing.
type HealthCheck func(ctx context.Context) error

// NewRouter wires all public endpoints behind the shared middleware chain,
// plus the operational endpoints. The webhook group is mounted outside the
// JSON content-type check because the processor signs the raw body.
func NewRouter(logger *slog.Logger, health HealthCheck, webhookGroup RouteRegistrar, groups ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Welcome to the Domain Service Provider"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req.Context()); err != nil {
				logger.WarnContext(req.Context(), "health check failed",
					"request_id", middleware.GetRequestID(req.Context()),
					"error", err.Error(),
				)
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	webhookGroup.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		for _, group := range groups {
			group.Register(r)
		}
	})
	return r
}
