// Package metrics exposes per-operation counters and latencies of the
// calculation API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	batch    prometheus.Histogram
	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg gets a private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keel",
			Name:      "calc_requests_total",
			Help:      "Calculation requests by operation and status.",
		}, []string{"op", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "keel",
			Name:      "calc_errors_total",
			Help:      "Failed calculations by operation and error kind.",
		}, []string{"op", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "keel",
			Name:      "calc_duration_seconds",
			Help:      "Time spent in a calculation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
		batch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "keel",
			Name:      "batch_size",
			Help:      "Load cases per batch run.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500},
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.requests, m.failures, m.duration, m.batch)
	return m
}

// Observe records one calculation. kind is empty on success.
func (m *Metrics) Observe(op, kind string, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if kind != "" {
		status = "error"
		m.failures.WithLabelValues(op, kind).Inc()
	}
	m.requests.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) ObserveBatch(n int) {
	if m == nil {
		return
	}
	m.batch.Observe(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
