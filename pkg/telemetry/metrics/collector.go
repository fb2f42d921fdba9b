// Package metrics exposes the relay's Prometheus metrics: request counts
// and latencies by endpoint, upstream call outcomes, warm memo activity,
// and snapshot fallbacks.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "folio"
	subsystem = "relay"
)

// Collector registers and records all relay metrics against a private
// registry, so tests can create collectors freely without duplicate
// registration panics.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec

	memoEntries       prometheus.Gauge
	snapshotFallbacks prometheus.Counter
}

// NewCollector creates a metrics collector. When enabled is false every
// record call is a no-op and Handler serves an empty registry.
func NewCollector(enabled bool) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		enabled:  enabled,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Relay requests by endpoint, status class, and cache disposition.",
		}, []string{"endpoint", "status", "cache"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Relay request latency by endpoint.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_requests_total",
			Help:      "Upstream calls by upstream name and outcome.",
		}, []string{"upstream", "outcome"}),

		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream call latency by upstream name.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"upstream"}),

		memoEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "memo_entries",
			Help:      "Live entries in the warm memo.",
		}),

		snapshotFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_fallbacks_total",
			Help:      "Catalog requests served from a persisted snapshot.",
		}),
	}

	if enabled {
		registry.MustRegister(
			c.requestsTotal,
			c.requestDuration,
			c.upstreamTotal,
			c.upstreamDuration,
			c.memoEntries,
			c.snapshotFallbacks,
		)
	}

	return c
}

// RecordRequest records one completed relay request.
//
//   - endpoint: the route name (e.g., "catalog")
//   - status: the HTTP status code
//   - cache: the cache disposition ("hit", "miss", "snapshot", or "")
func (c *Collector) RecordRequest(endpoint string, status int, cache string, duration time.Duration) {
	if !c.enabled {
		return
	}
	if cache == "" {
		cache = "none"
	}
	c.requestsTotal.WithLabelValues(endpoint, statusClass(status), cache).Inc()
	c.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordUpstream records one upstream call.
func (c *Collector) RecordUpstream(upstream, outcome string, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.upstreamTotal.WithLabelValues(upstream, outcome).Inc()
	c.upstreamDuration.WithLabelValues(upstream).Observe(duration.Seconds())
}

// SetMemoEntries updates the warm memo size gauge.
func (c *Collector) SetMemoEntries(n int) {
	if !c.enabled {
		return
	}
	c.memoEntries.Set(float64(n))
}

// RecordSnapshotFallback counts one catalog request served from a
// persisted snapshot.
func (c *Collector) RecordSnapshotFallback() {
	if !c.enabled {
		return
	}
	c.snapshotFallbacks.Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// statusClass buckets a status code to keep label cardinality low.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
