package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/proxy/middleware"
	"mercator-hq/loupe/pkg/telemetry/health"
	"mercator-hq/loupe/pkg/telemetry/logging"
	"mercator-hq/loupe/pkg/telemetry/metrics"
)

func testConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.Proxy.HostAddress = "127.0.0.1:0"
	cfg.Proxy.DestinationURL = "http://127.0.0.1:1"
	cfg.Proxy.ShutdownTimeout = 5 * time.Second
	return cfg
}

// startServer serves s in the background and returns a stop function that
// cancels it and returns the Serve error.
func startServer(t *testing.T, s *Server) func() error {
	t.Helper()

	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx)
	}()

	var once sync.Once
	var result error
	stop := func() error {
		once.Do(func() {
			cancel()
			select {
			case result = <-done:
			case <-time.After(10 * time.Second):
				result = errors.New("Serve did not return")
			}
		})
		return result
	}
	t.Cleanup(func() { _ = stop() })
	return stop
}

func TestServer_ServesProxyHandler(t *testing.T) {
	var gotID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = middleware.GetRequestID(r.Context())
		_, _ = io.WriteString(w, "proxied "+r.URL.Path)
	})

	s := New(testConfig(), handler, logging.NewNop())
	stop := startServer(t, s)

	req, _ := http.NewRequest(http.MethodGet, "http://"+s.Addr().String()+"/any/path", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(body) != "proxied /any/path" {
		t.Errorf("body = %q", body)
	}
	if gotID != "abc-123" {
		t.Errorf("request id = %q, want abc-123", gotID)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}

	if err := stop(); err != nil {
		t.Errorf("Serve() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestServer_AdminListener(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.AdminAddress = "127.0.0.1:0"

	checker := health.New(time.Second)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	admin := NewAdminMux(cfg.Telemetry, checker, collector, BuildInfo{Version: "1.2.3"})

	s := New(cfg, http.NotFoundHandler(), logging.NewNop(),
		WithAdminHandler(admin),
		WithHealth(checker),
	)
	stop := startServer(t, s)

	base := "http://" + s.AdminAddr().String()
	for _, path := range []string{"/health", "/ready", "/version", "/metrics"} {
		resp, err := http.Get(base + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}

	if err := stop(); err != nil {
		t.Errorf("Serve() error = %v", err)
	}
	if got := checker.CheckReadiness(context.Background()).Status; got != health.StatusDraining {
		t.Errorf("readiness after shutdown = %q, want %q", got, health.StatusDraining)
	}
}

func TestServer_ShutdownHooks(t *testing.T) {
	var order []string
	hook := func(name string, err error) Option {
		return OnShutdown(name, func(context.Context) error {
			order = append(order, name)
			return err
		})
	}

	s := New(testConfig(), http.NotFoundHandler(), logging.NewNop(),
		hook("recorder", nil),
		hook("storage", errors.New("close failed")),
		hook("tracer", nil),
	)
	stop := startServer(t, s)

	err := stop()
	if err == nil || !strings.Contains(err.Error(), "storage: close failed") {
		t.Errorf("Serve() error = %v, want storage failure", err)
	}
	if strings.Join(order, ",") != "recorder,storage,tracer" {
		t.Errorf("hook order = %v", order)
	}

	if again := s.Shutdown(context.Background()); again != err {
		t.Errorf("second Shutdown() = %v, want %v", again, err)
	}
}

func TestServer_ProxyProtocol(t *testing.T) {
	cfg := testConfig()
	cfg.Proxy.ProxyProtocol = true

	remote := make(chan string, 1)
	s := New(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remote <- r.RemoteAddr
	}), logging.NewNop())
	startServer(t, s)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	fmt.Fprintf(conn, "PROXY TCP4 203.0.113.7 127.0.0.1 5555 80\r\n")
	fmt.Fprintf(conn, "GET / HTTP/1.1\r\nHost: loupe\r\nConnection: close\r\n\r\n")

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	resp.Body.Close()

	select {
	case addr := <-remote:
		if host, _, _ := net.SplitHostPort(addr); host != "203.0.113.7" {
			t.Errorf("RemoteAddr = %q, want client from PROXY header", addr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}
}

func TestServer_ListenErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Proxy.HostAddress = "256.0.0.1:99999"

	s := New(cfg, http.NotFoundHandler(), logging.NewNop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start() error = nil for an invalid address")
	}

	if err := New(testConfig(), http.NotFoundHandler(), nil).Serve(context.Background()); err == nil {
		t.Error("Serve() before Listen() error = nil")
	}
}
