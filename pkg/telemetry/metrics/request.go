package metrics

import (
	"time"

	"mercator-hq/loupe/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics for requests handled by the proxy.
//
// Metrics:
//   - loupe_proxy_requests_total: requests by method and status class
//   - loupe_proxy_request_duration_seconds: end-to-end handler duration
//   - loupe_proxy_body_size_bytes: captured body sizes by direction
//   - loupe_proxy_log_events_total: emitted request/response events
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sizeBytes       *prometheus.HistogramVec
	eventsTotal     *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of proxied requests",
			},
			[]string{"method", "status_class"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of proxied requests in seconds, including capture and logging",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method"},
		),

		sizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "body_size_bytes",
				Help:      "Size of captured request and response bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 9), // 256B to 16MB
			},
			[]string{"direction"},
		),

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "log_events_total",
				Help:      "Total number of request/response log events emitted",
			},
			[]string{"type"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.sizeBytes,
		rm.eventsTotal,
	)

	return rm
}

// RecordRequest records one completed request.
func (rm *RequestMetrics) RecordRequest(method, statusClass string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(method, statusClass).Inc()
	rm.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordSize records the size of a request or response body. Empty bodies
// are observed too so the count matches the number of captures.
func (rm *RequestMetrics) RecordSize(direction string, sizeBytes int) {
	rm.sizeBytes.WithLabelValues(direction).Observe(float64(sizeBytes))
}

// RecordEvent counts one emitted event of the given type.
func (rm *RequestMetrics) RecordEvent(eventType string) {
	rm.eventsTotal.WithLabelValues(eventType).Inc()
}
