// Package tracing provides OpenTelemetry tracing for Loupe.
//
// Each proxied request gets one client span, "loupe.forward", around the
// call to the destination. It carries the request id, method, path,
// destination host, body sizes, the upstream status and, on failure, the
// failure kind and error.
//
// Inbound W3C traceparent headers are honoured so the span joins the
// caller's trace. Trace headers are never injected into the upstream
// request: Loupe forwards requests unmodified.
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: "localhost:4317"
//	    sampler: "parent"   # always, never, ratio, parent
//	    sample_ratio: 0.1
//
// Spans are exported over OTLP/gRPC. A disabled or nil *Tracer returns
// noop spans.
package tracing
