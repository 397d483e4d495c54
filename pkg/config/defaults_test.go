package config

import (
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	if cfg.Proxy.HostAddress != "" || cfg.Proxy.DestinationURL != "" {
		t.Errorf("expected required addresses to be empty, got %q and %q", cfg.Proxy.HostAddress, cfg.Proxy.DestinationURL)
	}
	if cfg.Proxy.ReadTimeout != DefaultReadTimeout {
		t.Errorf("expected read timeout %v, got %v", DefaultReadTimeout, cfg.Proxy.ReadTimeout)
	}
	if cfg.Proxy.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected write timeout %v, got %v", DefaultWriteTimeout, cfg.Proxy.WriteTimeout)
	}
	if cfg.Proxy.MaxHeaderBytes != DefaultMaxHeaderBytes {
		t.Errorf("expected max header bytes %d, got %d", DefaultMaxHeaderBytes, cfg.Proxy.MaxHeaderBytes)
	}
	if cfg.Proxy.ResponseHeaderTimeout != 0 {
		t.Errorf("expected no response header timeout, got %v", cfg.Proxy.ResponseHeaderTimeout)
	}
	if cfg.Logging.Level != DefaultLoggingLevel {
		t.Errorf("expected logging level %q, got %q", DefaultLoggingLevel, cfg.Logging.Level)
	}
	if cfg.Logging.PrintStyle != DefaultPrintStyle {
		t.Errorf("expected print style %q, got %q", DefaultPrintStyle, cfg.Logging.PrintStyle)
	}
	if cfg.Logging.PrettyFields != nil {
		t.Errorf("expected pretty fields to be unset, got %v", *cfg.Logging.PrettyFields)
	}
	if !cfg.Logging.DecodeGzip {
		t.Error("expected gzip decoding to default to true")
	}
	if cfg.Journal.Enabled {
		t.Error("expected journal to be disabled by default")
	}
	if !cfg.Journal.SQLite.WALMode {
		t.Error("expected WAL mode to default to true")
	}
	if cfg.Journal.Retention.Days != DefaultJournalRetentionDays {
		t.Errorf("expected retention days %d, got %d", DefaultJournalRetentionDays, cfg.Journal.Retention.Days)
	}
	if !cfg.Telemetry.Metrics.Enabled || !cfg.Telemetry.Health.Enabled {
		t.Error("expected metrics and health to default to enabled")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing to be disabled by default")
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) != len(DefaultRequestDurationBuckets) {
		t.Errorf("expected %d buckets, got %d", len(DefaultRequestDurationBuckets), len(cfg.Telemetry.Metrics.RequestDurationBuckets))
	}
}

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		check func(*testing.T, *Config)
	}{
		{
			name:  "empty config gets all defaults",
			input: Config{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Proxy.IdleTimeout != DefaultIdleTimeout {
					t.Errorf("expected idle timeout %v, got %v", DefaultIdleTimeout, cfg.Proxy.IdleTimeout)
				}
				if cfg.Journal.Backend != DefaultJournalBackend {
					t.Errorf("expected journal backend %q, got %q", DefaultJournalBackend, cfg.Journal.Backend)
				}
				if cfg.Journal.Retention.PruneSchedule != DefaultJournalRetentionSchedule {
					t.Errorf("expected prune schedule %q, got %q", DefaultJournalRetentionSchedule, cfg.Journal.Retention.PruneSchedule)
				}
				if cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
					t.Errorf("expected metrics path %q, got %q", DefaultMetricsPath, cfg.Telemetry.Metrics.Path)
				}
				if cfg.Telemetry.Health.ReadinessPath != DefaultHealthReadinessPath {
					t.Errorf("expected readiness path %q, got %q", DefaultHealthReadinessPath, cfg.Telemetry.Health.ReadinessPath)
				}
			},
		},
		{
			name: "existing values are preserved",
			input: Config{
				Proxy:   ProxyConfig{ReadTimeout: 5 * time.Second},
				Logging: LoggingConfig{Level: "debug", PrintStyle: "json"},
				Journal: JournalConfig{Backend: "redis"},
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Proxy.ReadTimeout != 5*time.Second {
					t.Errorf("expected read timeout 5s, got %v", cfg.Proxy.ReadTimeout)
				}
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected level debug, got %q", cfg.Logging.Level)
				}
				if cfg.Logging.PrintStyle != "json" {
					t.Errorf("expected print style json, got %q", cfg.Logging.PrintStyle)
				}
				if cfg.Journal.Backend != "redis" {
					t.Errorf("expected backend redis, got %q", cfg.Journal.Backend)
				}
			},
		},
		{
			name:  "retention days of zero means forever",
			input: Config{Journal: JournalConfig{Retention: RetentionConfig{Days: 0}}},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Journal.Retention.Days != 0 {
					t.Errorf("expected retention days to stay 0, got %d", cfg.Journal.Retention.Days)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			ApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := NewDefault()
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Proxy != first.Proxy {
		t.Errorf("expected proxy config unchanged, got %+v", cfg.Proxy)
	}
	if cfg.Journal != first.Journal {
		t.Errorf("expected journal config unchanged, got %+v", cfg.Journal)
	}
}

func TestDefaultBucketsNotShared(t *testing.T) {
	cfg := NewDefault()
	cfg.Telemetry.Metrics.RequestDurationBuckets[0] = 42

	if DefaultRequestDurationBuckets[0] == 42 {
		t.Error("expected config buckets to be a copy of the defaults")
	}
}
