package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mercator-hq/loupe/pkg/telemetry/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantLog bool
	}{
		{name: "debug level writes access line", level: "debug", wantLog: true},
		{name: "normal level stays quiet", level: "normal", wantLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := logging.New(logging.Config{Level: tt.level, Writer: buf})
			if err != nil {
				t.Fatal(err)
			}

			var start bool
			handler := Chain(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					start = !GetStartTime(r.Context()).IsZero()
					w.WriteHeader(http.StatusTeapot)
					_, _ = w.Write([]byte("short and stout"))
				}),
				RequestIDMiddleware,
				LoggingMiddleware(logger),
			)

			req := httptest.NewRequest(http.MethodGet, "/brew", nil)
			req.Header.Set(RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if !start {
				t.Error("start time missing from context")
			}
			if w.Code != http.StatusTeapot {
				t.Errorf("status = %d", w.Code)
			}

			out := buf.String()
			if got := strings.Contains(out, "request completed"); got != tt.wantLog {
				t.Fatalf("access line written = %v, want %v: %q", got, tt.wantLog, out)
			}
			if tt.wantLog {
				for _, want := range []string{`"status":418`, `"bytes":15`, `"request_id":"abc-123"`} {
					if !strings.Contains(out, want) {
						t.Errorf("access line missing %s: %s", want, out)
					}
				}
			}
		})
	}
}

func TestGetStartTimeMissing(t *testing.T) {
	if !GetStartTime(context.Background()).IsZero() {
		t.Error("expected zero time")
	}
}

func TestResponseWriterDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	_, _ = rw.Write([]byte("x"))
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusOK || rec.Code != http.StatusOK {
		t.Errorf("status = %d/%d, want 200", rw.statusCode, rec.Code)
	}
}
