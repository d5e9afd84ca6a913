// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Realtime metrics
	RealtimeActiveConnections  prometheus.Gauge
	RealtimeEventsSentTotal    *prometheus.CounterVec
	RealtimeEventsDroppedTotal prometheus.Counter

	// Rate limiting
	RateLimitExceededTotal prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all collectors. Safe to call more
// than once; only the first call registers.
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path"},
			),
			RealtimeActiveConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "realtime_active_connections",
					Help: "Number of live websocket connections",
				},
			),
			RealtimeEventsSentTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "realtime_events_sent_total",
					Help: "Events delivered to client send buffers, by type",
				},
				[]string{"type"},
			),
			RealtimeEventsDroppedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "realtime_events_dropped_total",
					Help: "Events dropped because a client send buffer was full",
				},
			),
			RateLimitExceededTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
			),
		}
	})
	return instance
}

// Get returns the collectors, or nil when Initialize has not been
// called (tests that do not exercise metrics skip registration).
func Get() *Metrics {
	return instance
}
