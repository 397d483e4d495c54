package metrics

import (
	"mercator-hq/loupe/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// JournalMetrics tracks the exchange journal.
//
// Metrics:
//   - loupe_proxy_journal_writes_total: writes by backend and result
//   - loupe_proxy_journal_dropped_total: exchanges dropped on a full buffer
//   - loupe_proxy_journal_queue_depth: exchanges waiting to be written
//   - loupe_proxy_journal_pruned_total: exchanges removed by retention
type JournalMetrics struct {
	writesTotal *prometheus.CounterVec
	dropsTotal  prometheus.Counter
	queueDepth  prometheus.Gauge
	prunedTotal prometheus.Counter
}

// NewJournalMetrics creates and registers journal metrics with the provided registry.
func NewJournalMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JournalMetrics {
	jm := &JournalMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_writes_total",
				Help:      "Total number of journal writes by backend and result",
			},
			[]string{"backend", "result"},
		),

		dropsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_dropped_total",
				Help:      "Total number of exchanges dropped because the journal buffer was full",
			},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_queue_depth",
				Help:      "Number of exchanges waiting to be written to the journal",
			},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_pruned_total",
				Help:      "Total number of exchanges removed by retention",
			},
		),
	}

	registry.MustRegister(
		jm.writesTotal,
		jm.dropsTotal,
		jm.queueDepth,
		jm.prunedTotal,
	)

	return jm
}

// RecordWrite records the result of one journal write.
func (jm *JournalMetrics) RecordWrite(backend string, ok bool) {
	result := "success"
	if !ok {
		result = "error"
	}
	jm.writesTotal.WithLabelValues(backend, result).Inc()
}

// RecordPruned adds count to the pruned total.
func (jm *JournalMetrics) RecordPruned(count int64) {
	if count > 0 {
		jm.prunedTotal.Add(float64(count))
	}
}
