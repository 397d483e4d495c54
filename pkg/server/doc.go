// Package server runs Loupe's listeners and owns their lifecycle.
//
// The public listener serves the proxy handler on every path, wrapped in
// the recovery, request id and access log middleware. With
// proxy.proxy_protocol enabled it accepts HAProxy PROXY v1/v2 headers so
// the client address seen by the handler is the real client.
//
// The optional admin listener (telemetry.admin_address) serves health,
// version and metrics endpoints; see NewAdminMux.
//
// # Shutdown
//
// When the Serve context is cancelled the server:
//
//  1. marks the health checker as draining, so readiness fails
//  2. stops both listeners and waits for in-flight requests, bounded by
//     proxy.shutdown_timeout
//  3. runs the OnShutdown hooks in registration order
//
// Errors from every step are combined with multierr.
//
// # Basic Usage
//
//	srv := server.New(cfg, handler, logger,
//	    server.WithAdminHandler(server.NewAdminMux(cfg.Telemetry, checker, collector, info)),
//	    server.WithHealth(checker),
//	    server.OnShutdown("tracer", tracer.Shutdown),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
