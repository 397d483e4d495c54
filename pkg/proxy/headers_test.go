package proxy

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEndToEndHeaders(t *testing.T) {
	in := http.Header{
		"Connection":        {"keep-alive, X-Hop"},
		"Keep-Alive":        {"timeout=5"},
		"Te":                {"trailers"},
		"Transfer-Encoding": {"chunked"},
		"X-Hop":             {"drop me"},
		"Content-Type":      {"text/plain"},
		"Accept":            {"a", "b"},
	}

	out := endToEndHeaders(in)

	for _, name := range []string{"Connection", "Keep-Alive", "Te", "Transfer-Encoding", "X-Hop"} {
		if _, ok := out[name]; ok {
			t.Errorf("%s was not stripped", name)
		}
	}
	if out.Get("Content-Type") != "text/plain" || len(out["Accept"]) != 2 {
		t.Errorf("end-to-end headers lost: %v", out)
	}

	out["Accept"][0] = "changed"
	if in["Accept"][0] != "a" {
		t.Error("result aliases the input")
	}
}

func TestIsUpgrade(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   bool
	}{
		{"websocket", http.Header{"Connection": {"Upgrade"}, "Upgrade": {"websocket"}}, true},
		{"token list", http.Header{"Connection": {"keep-alive, upgrade"}, "Upgrade": {"h2c"}}, true},
		{"upgrade without connection token", http.Header{"Upgrade": {"websocket"}}, false},
		{"plain", http.Header{"Connection": {"keep-alive"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUpgrade(tt.header); got != tt.want {
				t.Errorf("isUpgrade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildUpstreamHeaders(t *testing.T) {
	t.Run("first hop", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "http://front.example/", nil)
		h := buildUpstreamHeaders(r, "203.0.113.9")

		if h.Get("X-Forwarded-For") != "203.0.113.9" {
			t.Errorf("X-Forwarded-For = %q", h.Get("X-Forwarded-For"))
		}
		if h.Get("X-Forwarded-Host") != "front.example" {
			t.Errorf("X-Forwarded-Host = %q", h.Get("X-Forwarded-Host"))
		}
		if h.Get("X-Forwarded-Proto") != "http" {
			t.Errorf("X-Forwarded-Proto = %q", h.Get("X-Forwarded-Proto"))
		}
	})

	t.Run("existing chain and tls", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "https://front.example/", nil)
		r.TLS = &tls.ConnectionState{}
		r.Header.Add("X-Forwarded-For", "198.51.100.1")
		r.Header.Add("X-Forwarded-For", "198.51.100.2")
		r.Header.Set("X-Forwarded-Host", "original.example")

		h := buildUpstreamHeaders(r, "203.0.113.9")

		if got := h.Get("X-Forwarded-For"); got != "198.51.100.1, 198.51.100.2, 203.0.113.9" {
			t.Errorf("X-Forwarded-For = %q", got)
		}
		if h.Get("X-Forwarded-Host") != "original.example" {
			t.Errorf("X-Forwarded-Host = %q", h.Get("X-Forwarded-Host"))
		}
		if h.Get("X-Forwarded-Proto") != "https" {
			t.Errorf("X-Forwarded-Proto = %q", h.Get("X-Forwarded-Proto"))
		}
	})
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[2001:db8::1]:5555"
	if got := ClientIP(r); got != "2001:db8::1" {
		t.Errorf("ClientIP() = %q", got)
	}

	r.RemoteAddr = "not-an-address"
	if got := ClientIP(r); got != "not-an-address" {
		t.Errorf("ClientIP() = %q", got)
	}
}
