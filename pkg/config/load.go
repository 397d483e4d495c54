package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration in precedence order and validates it:
//
//  1. Default values (defaults.go)
//  2. The YAML file at path, when path is not empty
//  3. Environment variables
//  4. Validation (fails fast if invalid)
func Load(path string) (*Config, error) {
	return LoadWithLookup(path, os.LookupEnv)
}

// LoadWithLookup is Load with an explicit environment source.
func LoadWithLookup(path string, lookup LookupFunc) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile decodes the YAML file at path on top of the defaults without
// consulting the environment or validating. An empty path returns the
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := NewDefault()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// ApplyEnv applies environment overrides to cfg. The proxy's own variables
// (HOST_ADDRESS, DESTINATION_URL, PRINT_STYLE, LOG_LEVEL, PRETTY_FIELDS)
// are unprefixed; everything else uses the LOUPE_ prefix. Values that fail
// to parse are reported together as a ValidationError.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	e := &envReader{lookup: lookup}

	// Proxy
	e.str("HOST_ADDRESS", &cfg.Proxy.HostAddress)
	e.str("DESTINATION_URL", &cfg.Proxy.DestinationURL)
	e.boolean("LOUPE_PROXY_PROTOCOL", &cfg.Proxy.ProxyProtocol)
	e.duration("LOUPE_READ_TIMEOUT", &cfg.Proxy.ReadTimeout)
	e.duration("LOUPE_WRITE_TIMEOUT", &cfg.Proxy.WriteTimeout)
	e.duration("LOUPE_IDLE_TIMEOUT", &cfg.Proxy.IdleTimeout)
	e.duration("LOUPE_SHUTDOWN_TIMEOUT", &cfg.Proxy.ShutdownTimeout)
	e.duration("LOUPE_DIAL_TIMEOUT", &cfg.Proxy.DialTimeout)
	e.duration("LOUPE_RESPONSE_HEADER_TIMEOUT", &cfg.Proxy.ResponseHeaderTimeout)
	e.integer("LOUPE_MAX_HEADER_BYTES", &cfg.Proxy.MaxHeaderBytes)

	// Logging
	e.str("LOG_LEVEL", &cfg.Logging.Level)
	e.str("PRINT_STYLE", &cfg.Logging.PrintStyle)
	if val, ok := e.get("PRETTY_FIELDS"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.PrettyFields = &b
		} else {
			e.fail("PRETTY_FIELDS", "must be a boolean")
		}
	}
	e.str("LOUPE_LOG_FORMAT", &cfg.Logging.Format)
	e.integer("LOUPE_LOG_MAX_BODY_BYTES", &cfg.Logging.MaxBodyBytes)
	e.boolean("LOUPE_LOG_DECODE_GZIP", &cfg.Logging.DecodeGzip)
	e.list("LOUPE_LOG_REDACT_HEADERS", &cfg.Logging.RedactHeaders)
	e.boolean("LOUPE_LOG_WATCH", &cfg.Logging.Watch)

	// Journal
	e.boolean("LOUPE_JOURNAL_ENABLED", &cfg.Journal.Enabled)
	e.str("LOUPE_JOURNAL_BACKEND", &cfg.Journal.Backend)
	e.str("LOUPE_JOURNAL_SQLITE_PATH", &cfg.Journal.SQLite.Path)
	e.str("LOUPE_JOURNAL_REDIS_ADDRESS", &cfg.Journal.Redis.Address)
	e.str("LOUPE_JOURNAL_REDIS_PASSWORD", &cfg.Journal.Redis.Password)
	e.integer("LOUPE_JOURNAL_REDIS_DB", &cfg.Journal.Redis.DB)
	e.str("LOUPE_JOURNAL_REDIS_STREAM", &cfg.Journal.Redis.Stream)
	e.integer("LOUPE_JOURNAL_MEMORY_MAX_RECORDS", &cfg.Journal.Memory.MaxRecords)
	e.integer("LOUPE_JOURNAL_BUFFER", &cfg.Journal.Recorder.AsyncBuffer)
	e.integer("LOUPE_JOURNAL_RETENTION_DAYS", &cfg.Journal.Retention.Days)
	e.int64("LOUPE_JOURNAL_RETENTION_MAX_RECORDS", &cfg.Journal.Retention.MaxRecords)
	e.str("LOUPE_JOURNAL_PRUNE_SCHEDULE", &cfg.Journal.Retention.PruneSchedule)

	// Telemetry
	e.str("LOUPE_ADMIN_ADDRESS", &cfg.Telemetry.AdminAddress)
	e.boolean("LOUPE_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.boolean("LOUPE_HEALTH_ENABLED", &cfg.Telemetry.Health.Enabled)
	e.boolean("LOUPE_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	e.str("LOUPE_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	e.str("LOUPE_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	e.float("LOUPE_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	e.str("LOUPE_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)
	e.boolean("LOUPE_TRACING_INSECURE", &cfg.Telemetry.Tracing.OTLP.Insecure)

	if len(e.errs) > 0 {
		return ValidationError{Errors: e.errs}
	}
	return nil
}

// envReader applies typed environment overrides and collects parse errors.
type envReader struct {
	lookup LookupFunc
	errs   []FieldError
}

func (e *envReader) get(key string) (string, bool) {
	val, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}

func (e *envReader) fail(key, msg string) {
	e.errs = append(e.errs, FieldError{Field: key, Message: msg})
}

func (e *envReader) str(key string, dst *string) {
	if val, ok := e.get(key); ok {
		*dst = val
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if val, ok := e.get(key); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			e.fail(key, "must be a boolean")
			return
		}
		*dst = b
	}
}

func (e *envReader) integer(key string, dst *int) {
	if val, ok := e.get(key); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			e.fail(key, "must be an integer")
			return
		}
		*dst = i
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if val, ok := e.get(key); ok {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			e.fail(key, "must be an integer")
			return
		}
		*dst = i
	}
}

func (e *envReader) float(key string, dst *float64) {
	if val, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			e.fail(key, "must be a number")
			return
		}
		*dst = f
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if val, ok := e.get(key); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			e.fail(key, "must be a duration such as 30s")
			return
		}
		*dst = d
	}
}

func (e *envReader) list(key string, dst *[]string) {
	if val, ok := e.get(key); ok {
		var items []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*dst = items
	}
}
