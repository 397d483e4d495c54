package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"mercator-hq/loupe/pkg/telemetry/logging"
)

// errorBody is the JSON error shape returned to clients by the proxy.
type errorBody struct {
	Message string `json:"message"`
}

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// Internal Server Error with a JSON message. The panic and its stack trace
// are logged; internal details are not exposed to clients.
//
// http.ErrAbortHandler is re-raised so the server can abort the connection.
// A panic after the response headers were written cannot be turned into a
// 500; it is logged and the connection is aborted the same way.
//
// Example usage:
//
//	handler = RecoveryMiddleware(logger)(handler)
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
					"headers_written", rw.written,
				)

				if rw.written {
					panic(http.ErrAbortHandler)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(errorBody{Message: "internal proxy error"})
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
