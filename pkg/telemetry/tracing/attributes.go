package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanForward is the name of the span around each forward call.
const SpanForward = "loupe.forward"

// Attribute keys. HTTP keys follow OpenTelemetry semantic conventions;
// Loupe-specific keys use the "loupe.*" namespace.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrURLPath        = "url.path"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrServerAddress  = "server.address"

	AttrRequestID        = "loupe.request_id"
	AttrRequestBodySize  = "loupe.request.body_size"
	AttrResponseBodySize = "loupe.response.body_size"
	AttrFailureKind      = "loupe.failure.kind"

	AttrErrorMessage = "error.message"
)

// ForwardStartOptions returns the span options for a forward span.
func ForwardStartOptions(requestID, method, path, destinationHost string, bodySize int) []trace.SpanStartOption {
	return []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrRequestID, requestID),
			attribute.String(AttrHTTPMethod, method),
			attribute.String(AttrURLPath, path),
			attribute.String(AttrServerAddress, destinationHost),
			attribute.Int(AttrRequestBodySize, bodySize),
		),
	}
}

// SetResponseAttributes records the upstream status and body size. 5xx
// statuses mark the span as failed.
func SetResponseAttributes(span trace.Span, statusCode, bodySize int) {
	span.SetAttributes(
		attribute.Int(AttrHTTPStatusCode, statusCode),
		attribute.Int(AttrResponseBodySize, bodySize),
	)
	if statusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	}
}

// SetFailureAttributes records a failed forward call.
func SetFailureAttributes(span trace.Span, kind string, err error) {
	span.SetAttributes(attribute.String(AttrFailureKind, kind))
	SetError(span, err)
}
