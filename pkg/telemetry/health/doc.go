// Package health provides the liveness and readiness endpoints served on
// Loupe's admin listener.
//
// # Endpoints
//
//   - /health: liveness, 200 while the process runs
//   - /ready: readiness, runs the registered component checks
//   - /version: build information
//
// The liveness and readiness paths come from config.HealthConfig.
//
// # Checks
//
// Two components are checked: the destination (a TCP connect, see
// DestinationCheck) and, when enabled, the exchange journal (a storage
// ping). Checks run concurrently, each bounded by the configured timeout.
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("destination", health.DestinationCheck(dest))
//	checker.Register(adminMux, cfg.Telemetry.Health, version, commit, buildTime)
//
// # Shutdown
//
// SetDraining makes readiness return 503 "draining" so load balancers stop
// sending traffic while in-flight requests finish. Liveness is unaffected.
package health
