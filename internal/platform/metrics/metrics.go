package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CheckoutSessionsCreated prometheus.Counter
	Purchases               *prometheus.CounterVec
	WebhookEvents           *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec
	ProviderErrors          *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CheckoutSessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "checkout_sessions_created_total",
			Help: "Total number of payment checkout sessions created",
		}),
		Purchases: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_purchases_total",
			Help: "Total number of registrar purchase attempts by outcome",
		}, []string{"status"}),
		WebhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Total number of processor webhook deliveries by outcome",
		}, []string{"result"}),
		ProviderRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Latency of outbound provider calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_errors_total",
			Help: "Total number of failed outbound provider calls",
		}, []string{"provider", "operation"}),
	}
}

// ObserveProviderCall records one outbound provider round trip.
func (m *Metrics) ObserveProviderCall(provider, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ProviderRequestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.ProviderErrors.WithLabelValues(provider, operation).Inc()
	}
}

// IncPurchase counts one purchase attempt by status.
func (m *Metrics) IncPurchase(status string) {
	if m == nil {
		return
	}
	m.Purchases.WithLabelValues(status).Inc()
}

// IncSessionCreated counts one created checkout session.
func (m *Metrics) IncSessionCreated() {
	if m == nil {
		return
	}
	m.CheckoutSessionsCreated.Inc()
}

// IncWebhook counts one webhook delivery by result.
func (m *Metrics) IncWebhook(result string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(result).Inc()
}
