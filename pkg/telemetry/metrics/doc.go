// Package metrics provides Prometheus metrics collection for Loupe.
//
// # Metrics
//
//   - Request metrics: requests by method and status class, handler duration,
//     captured body sizes, emitted log events by type
//   - Upstream metrics: forward latency, failures by kind, in-flight forwards
//   - Journal metrics: writes by backend and result, drops, queue depth,
//     retention prunes
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordRequest("GET", 200, 12*time.Millisecond)
//	collector.RecordFailure("transport")
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A nil *Collector is valid and records nothing.
//
// # Cardinality
//
// The method label comes from clients. Standard methods are always kept; at
// most 32 other method names are admitted before the rest collapse into
// "other".
package metrics
