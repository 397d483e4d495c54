package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/loupe/pkg/telemetry/logging"
)

func TestRecoveryMiddleware(t *testing.T) {
	recovery := RecoveryMiddleware(logging.NewNop())

	t.Run("recovers from panic", func(t *testing.T) {
		wrapped := recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusInternalServerError)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}

		var body errorBody
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if body.Message == "" {
			t.Error("expected non-empty message")
		}
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		wrapped := recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Errorf("got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("aborts when headers were already written", func(t *testing.T) {
		wrapped := recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("partial"))
			panic("late panic")
		}))

		w := httptest.NewRecorder()
		func() {
			defer func() {
				if r := recover(); r != http.ErrAbortHandler {
					t.Errorf("recovered %v, want http.ErrAbortHandler", r)
				}
			}()
			wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		}()

		if w.Code != http.StatusOK {
			t.Errorf("Status code = %v, want the committed 200", w.Code)
		}
		if w.Body.String() != "partial" {
			t.Errorf("body = %q, want only the bytes written before the panic", w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct == "application/json" {
			t.Error("error Content-Type added after headers were written")
		}
	})

	t.Run("re-raises abort handler", func(t *testing.T) {
		wrapped := recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		defer func() {
			if r := recover(); r != http.ErrAbortHandler {
				t.Errorf("recovered %v, want http.ErrAbortHandler", r)
			}
		}()

		wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	})
}

func BenchmarkRecoveryMiddleware(b *testing.B) {
	wrapped := RecoveryMiddleware(logging.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
	}
}
