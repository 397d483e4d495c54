package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/loupe/pkg/format"
	"mercator-hq/loupe/pkg/telemetry/logging"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "proxy.host_address")
	// or the environment variable name for parse failures.
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProxy validates the listener and destination.
func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.HostAddress == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.host_address",
			Message: "host address is required (set HOST_ADDRESS)",
		})
	} else if err := validateHostPort(cfg.HostAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "proxy.host_address",
			Message: err.Error(),
		})
	}

	if cfg.DestinationURL == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.destination_url",
			Message: "destination URL is required (set DESTINATION_URL)",
		})
	} else if _, err := ParseDestination(cfg.DestinationURL); err != nil {
		errs = append(errs, FieldError{
			Field:   "proxy.destination_url",
			Message: err.Error(),
		})
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"proxy.read_timeout", cfg.ReadTimeout},
		{"proxy.write_timeout", cfg.WriteTimeout},
		{"proxy.idle_timeout", cfg.IdleTimeout},
		{"proxy.shutdown_timeout", cfg.ShutdownTimeout},
		{"proxy.dial_timeout", cfg.DialTimeout},
		{"proxy.response_header_timeout", cfg.ResponseHeaderTimeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, FieldError{
				Field:   d.field,
				Message: "must not be negative",
			})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}

	return errs
}

// validateLogging validates log level and presentation settings.
func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	if _, err := logging.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q (expected critical, normal, debug or off)", cfg.Level),
		})
	}

	if _, err := format.ParsePrintStyle(cfg.PrintStyle); err != nil {
		errs = append(errs, FieldError{
			Field:   "logging.print_style",
			Message: err.Error(),
		})
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q (expected json or text)", cfg.Format),
		})
	}

	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "logging.max_body_bytes",
			Message: "must be non-negative",
		})
	}

	return errs
}

// validateJournal validates journal configuration. Backend details are only
// checked when the journal is enabled.
func validateJournal(cfg *JournalConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError

	switch cfg.Backend {
	case "memory":
		if cfg.Memory.MaxRecords <= 0 {
			errs = append(errs, FieldError{
				Field:   "journal.memory.max_records",
				Message: "must be positive",
			})
		}
	case "sqlite", "sqlite3":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "journal.sqlite.path",
				Message: "path is required for sqlite backends",
			})
		}
		if cfg.SQLite.MaxIdleConns > cfg.SQLite.MaxOpenConns {
			errs = append(errs, FieldError{
				Field:   "journal.sqlite.max_idle_conns",
				Message: "must not exceed max_open_conns",
			})
		}
	case "redis":
		if cfg.Redis.Address == "" {
			errs = append(errs, FieldError{
				Field:   "journal.redis.address",
				Message: "address is required for the redis backend",
			})
		}
		if cfg.Redis.Stream == "" {
			errs = append(errs, FieldError{
				Field:   "journal.redis.stream",
				Message: "stream is required for the redis backend",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "journal.backend",
			Message: fmt.Sprintf("invalid backend %q (expected memory, sqlite, sqlite3 or redis)", cfg.Backend),
		})
	}

	if cfg.Recorder.AsyncBuffer <= 0 {
		errs = append(errs, FieldError{
			Field:   "journal.recorder.async_buffer",
			Message: "must be positive",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.retention.days",
			Message: "must be non-negative",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.retention.max_records",
			Message: "must be non-negative",
		})
	}
	if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "journal.retention.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}

	return errs
}

// validateTelemetry validates admin listener, metrics and tracing.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if cfg.AdminAddress != "" {
		if err := validateHostPort(cfg.AdminAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.admin_address",
				Message: err.Error(),
			})
		}
	}

	paths := []struct {
		field string
		value string
	}{
		{"telemetry.metrics.path", cfg.Metrics.Path},
		{"telemetry.health.liveness_path", cfg.Health.LivenessPath},
		{"telemetry.health.readiness_path", cfg.Health.ReadinessPath},
	}
	for _, p := range paths {
		if !strings.HasPrefix(p.value, "/") {
			errs = append(errs, FieldError{
				Field:   p.field,
				Message: "path must start with /",
			})
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio", "parent":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q (expected always, never, ratio or parent)", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "must be between 0.0 and 1.0",
			})
		}
	}

	return errs
}

// validateHostPort checks a host:port address with a numeric port.
func validateHostPort(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: must be host:port", addr)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("invalid port %q in address %q", port, addr)
	}
	return nil
}

// ParseDestination parses and normalizes a destination base URL. The URL
// must be absolute with an http or https scheme and a host. Internationalized
// host names are converted to their ASCII form.
func ParseDestination(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid destination URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		u.Scheme = strings.ToLower(u.Scheme)
	case "":
		return nil, fmt.Errorf("destination URL %q must be absolute (missing scheme)", raw)
	default:
		return nil, fmt.Errorf("destination URL %q has unsupported scheme %q", raw, u.Scheme)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("destination URL %q has no host", raw)
	}

	host, err := asciiHost(u.Hostname())
	if err != nil {
		return nil, fmt.Errorf("destination URL %q has an invalid host: %w", raw, err)
	}
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		u.Host = "[" + host + "]"
	} else {
		u.Host = host
	}

	return u, nil
}

// ValidateJournal validates the journal section on its own, as if the
// journal were enabled. Tools that read an existing journal use it instead
// of Validate so the proxy addresses are not required.
func ValidateJournal(cfg JournalConfig) error {
	cfg.Enabled = true
	if errs := validateJournal(&cfg); len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
