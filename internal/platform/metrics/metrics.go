package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics shared across the application.
// Feature packages with a richer metric surface define their own metrics
// subpackage and register against the default registry the same way.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec

	VerificationsStarted  prometheus.Counter
	VerificationsVerified prometheus.Counter
	VerificationsRejected prometheus.Counter

	NotificationsGenerated *prometheus.CounterVec
	DeliveriesTotal        *prometheus.CounterVec
	RetriesScheduled       prometheus.Counter

	CircuitOpened   *prometheus.CounterVec
	ServiceFailures *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "legatum_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		VerificationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "legatum_verifications_started_total",
			Help: "Total death verification submissions received",
		}),
		VerificationsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "legatum_verifications_verified_total",
			Help: "Total verifications that passed certificate matching",
		}),
		VerificationsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "legatum_verifications_rejected_total",
			Help: "Total verifications rejected by certificate matching",
		}),
		NotificationsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "legatum_notifications_generated_total",
			Help: "Notifications generated, labeled by source (template or ai)",
		}, []string{"source"}),
		DeliveriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "legatum_deliveries_total",
			Help: "Notification delivery attempts by method and outcome",
		}, []string{"method", "outcome"}),
		RetriesScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "legatum_delivery_retries_scheduled_total",
			Help: "Deliveries placed on the retry queue",
		}),
		CircuitOpened: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "legatum_circuit_opened_total",
			Help: "Circuit breaker open transitions by service",
		}, []string{"service"}),
		ServiceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "legatum_service_failures_total",
			Help: "Outbound service call failures by service",
		}, []string{"service"}),
	}
}
