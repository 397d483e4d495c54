package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

type staticEvent struct {
	out []byte
	err error
}

func (e staticEvent) Render() ([]byte, error) { return e.out, e.err }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid JSON config",
			config: Config{Level: "normal", Format: "json"},
		},
		{
			name:   "valid text config",
			config: Config{Level: "debug", Format: "text"},
		},
		{
			name:   "defaults",
			config: Config{},
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "verbose", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "normal", Format: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"critical", slog.LevelWarn},
		{"normal", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"off", LevelOff},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if err != nil {
				t.Fatalf("ParseLevel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelGating(t *testing.T) {
	tests := []struct {
		level     string
		wantEvent bool
		wantError bool
		wantDebug bool
	}{
		{level: "debug", wantEvent: true, wantError: true, wantDebug: true},
		{level: "normal", wantEvent: true, wantError: true},
		{level: "critical", wantError: true},
		{level: "off"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := New(Config{Level: tt.level, Format: "json", Writer: buf})
			if err != nil {
				t.Fatal(err)
			}

			logger.Event(context.Background(), staticEvent{out: []byte("EVENT")})
			logger.Error("upstream failed")
			logger.Debug("access")

			out := buf.String()
			if got := strings.Contains(out, "EVENT"); got != tt.wantEvent {
				t.Errorf("event written = %v, want %v", got, tt.wantEvent)
			}
			if got := strings.Contains(out, "upstream failed"); got != tt.wantError {
				t.Errorf("error written = %v, want %v", got, tt.wantError)
			}
			if got := strings.Contains(out, "access"); got != tt.wantDebug {
				t.Errorf("debug written = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestEvent(t *testing.T) {
	t.Run("written verbatim with trailing newline", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, _ := New(Config{Writer: buf})

		logger.Event(context.Background(), staticEvent{out: []byte(`{"type":"request"}`)})

		if got := buf.String(); got != "{\"type\":\"request\"}\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("render failure is swallowed", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, _ := New(Config{Writer: buf})

		logger.Event(context.Background(), staticEvent{err: errors.New("boom")})

		if !strings.Contains(buf.String(), "failed to render log event") {
			t.Errorf("expected warning, got %q", buf.String())
		}
	})

	t.Run("write failure is swallowed", func(t *testing.T) {
		logger, _ := New(Config{Writer: failingWriter{}})
		logger.Event(context.Background(), staticEvent{out: []byte("x")})
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Level: "normal", Writer: buf})
	child := logger.With("component", "proxy")

	logger.SetLevel(LevelOff)
	child.Error("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output after SetLevel(off), got %q", buf.String())
	}

	logger.SetLevel(slog.LevelDebug)
	child.Debug("visible")
	if !strings.Contains(buf.String(), `"component":"proxy"`) {
		t.Errorf("derived logger lost its fields: %q", buf.String())
	}
}

func TestContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Writer: buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	ctx = WithRequestID(ctx, "abc-123")
	logger.ErrorContext(ctx, "forward failed")

	out := buf.String()
	for _, want := range []string{
		`"request_id":"abc-123"`,
		`"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`,
		`"span_id":"00f067aa0ba902b7"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}

	buf.Reset()
	logger.InfoContext(context.Background(), "bare")
	if strings.Contains(buf.String(), "request_id") || strings.Contains(buf.String(), "trace_id") {
		t.Errorf("bare context produced correlation fields: %q", buf.String())
	}
	if GetRequestID(context.Background()) != "" {
		t.Error("expected empty request id on bare context")
	}
}

func TestConcurrentEventsDoNotInterleave(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Writer: buf})
	block := []byte("-----\nA\nB\n-----\n")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Event(context.Background(), staticEvent{out: block})
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), string(block)); got != 50 {
		t.Errorf("found %d intact blocks, want 50", got)
	}
}
