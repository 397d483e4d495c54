package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// propagator reads W3C traceparent/tracestate headers.
var propagator = propagation.TraceContext{}

// Extract returns ctx carrying the remote span context found in headers, if
// any. Loupe only reads trace context so the forward span joins the
// caller's trace; it never injects headers into the upstream request.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}
