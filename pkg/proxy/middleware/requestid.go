package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"mercator-hq/loupe/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header carrying the correlation id.
	RequestIDHeader = "X-Request-ID"
)

// AssignRequestID returns the correlation id for a request with header h.
// A non-empty X-Request-ID header (matched case-insensitively) is trusted and
// returned unchanged; otherwise a fresh random UUID v4 is generated.
func AssignRequestID(h http.Header) string {
	if requestID := h.Get(RequestIDHeader); requestID != "" {
		return requestID
	}
	return uuid.NewString()
}

// RequestIDMiddleware assigns the correlation id and stores it in the request
// context, where the proxy handler and context-aware loggers pick it up.
//
// Neither the request nor the response headers are modified: the proxy
// forwards both exactly as they arrived.
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), AssignRequestID(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}
