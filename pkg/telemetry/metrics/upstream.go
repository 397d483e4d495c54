package metrics

import (
	"mercator-hq/loupe/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the destination.
//
// Metrics:
//   - loupe_proxy_forward_duration_seconds: forward call latency
//   - loupe_proxy_forward_failures_total: failed forwards by failure kind
//   - loupe_proxy_forward_in_flight: forward calls currently in progress
type UpstreamMetrics struct {
	latency  prometheus.Histogram
	failures *prometheus.CounterVec
	inFlight prometheus.Gauge
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "forward_duration_seconds",
				Help:      "Latency of forward calls to the destination in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
		),

		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "forward_failures_total",
				Help:      "Total number of failed forward calls by failure kind",
			},
			[]string{"kind"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "forward_in_flight",
				Help:      "Number of forward calls currently in progress",
			},
		),
	}

	registry.MustRegister(
		um.latency,
		um.failures,
		um.inFlight,
	)

	return um
}

// RecordLatency records the latency of a forward call.
func (um *UpstreamMetrics) RecordLatency(latencySeconds float64) {
	um.latency.Observe(latencySeconds)
}

// RecordFailure counts a failed forward call.
//
// Kinds:
//   - "transport": connection refused, reset, timeout or upstream read error
//   - "invalid_destination": the upstream URL could not be built
//   - "other": anything else, such as refused protocol upgrades
func (um *UpstreamMetrics) RecordFailure(kind string) {
	um.failures.WithLabelValues(kind).Inc()
}
