package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Rows     prometheus.Gauge
	Sessions prometheus.Gauge
}

func NewPrometheusMetrics(namespace string) Prometheus {
	return Prometheus{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "pipeline invocations by operation and outcome",
			}, []string{"operation", "outcome"}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "duration_seconds",
				Help:      "pipeline durations by operation",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			}, []string{"operation"}),
		Rows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rows",
				Help:      "rows of the last loaded customer table",
			}),
		Sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions",
				Help:      "open dashboard sessions",
			}),
	}
}
