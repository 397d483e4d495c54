// Package telemetry groups Loupe's observability packages.
//
// # Components
//
//   - logging: the slog-backed logger that writes operational logs and
//     request/response events
//   - metrics: Prometheus metrics collection
//   - tracing: OpenTelemetry spans around upstream calls
//   - health: liveness and readiness endpoints
//
// Metrics, health and version endpoints are served on the admin listener
// (telemetry.admin_address), never on the proxy listener, so every path on
// the proxy listener is forwarded.
//
// # Usage
//
//	logger, _ := logging.New(cfg.Logging.LoggerConfig())
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing, version)
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
package telemetry
