package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Registrations    *prometheus.CounterVec
	LoginAttempts    *prometheus.CounterVec
	InventoryOps     *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SessionsRejected prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"result"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"result"}),
		InventoryOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_operations_total",
			Help: "Inventory operations by backend, operation and outcome",
		}, []string{"backend", "op", "result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventory_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		SessionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "inventory_sessions_rejected_total",
			Help: "Requests turned away for lacking a live session",
		}),
	}
}

func (m *Metrics) IncrementRegistrations(result string) {
	m.Registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementLoginAttempts(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementInventoryOps(backend, op, result string) {
	m.InventoryOps.WithLabelValues(backend, op, result).Inc()
}

func (m *Metrics) IncrementSessionsRejected() {
	m.SessionsRejected.Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
