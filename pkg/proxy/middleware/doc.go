// Package middleware provides HTTP middleware for the proxy listener.
//
// # Middleware Chain
//
//	handler = Chain(proxyHandler,
//	    RecoveryMiddleware(logger),
//	    RequestIDMiddleware,
//	    LoggingMiddleware(logger),
//	)
//
// Order (outermost to innermost):
//  1. Recovery: turn panics into a 500 with a JSON message
//  2. RequestID: assign the correlation id and store it in the context
//  3. Logging: debug-level access line with status and latency
//
// # Request ID
//
// AssignRequestID reuses an inbound X-Request-ID header verbatim when it is
// present and non-empty, and otherwise mints a UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The id is stored with logging.WithRequestID, so every context-aware log
// line for the request carries request_id. Headers are never modified.
//
// # Recovery
//
// RecoveryMiddleware catches panics and converts them to:
//
//	HTTP/1.1 500 Internal Server Error
//	Content-Type: application/json
//
//	{"message":"internal proxy error"}
//
// The panic stack trace is logged but not exposed to clients.
package middleware
