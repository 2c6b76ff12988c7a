package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Success = "success"
	Failure = "failure"
)

// Metrics tracks the pipeline invocations of the dashboard.
type Metrics struct {
	registry   *prometheus.Registry
	prometheus Prometheus
}

// New creates the collectors on a fresh registry.
func New(namespace string) *Metrics {
	p := NewPrometheusMetrics(namespace)
	registry := prometheus.NewRegistry()
	registry.MustRegister(p.Calls, p.Duration, p.Rows, p.Sessions)
	return &Metrics{
		registry:   registry,
		prometheus: p,
	}
}

// Observe records the outcome and duration of an operation that started at the given time.
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	outcome := Success
	if err != nil {
		outcome = Failure
	}
	m.prometheus.Calls.WithLabelValues(operation, outcome).Inc()
	m.prometheus.Duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Rows sets the number of rows of the last loaded table.
func (m *Metrics) Rows(n int) {
	m.prometheus.Rows.Set(float64(n))
}

// Sessions sets the number of open sessions.
func (m *Metrics) Sessions(n int) {
	m.prometheus.Sessions.Set(float64(n))
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
