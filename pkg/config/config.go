package config

import "time"

// Config is the root configuration structure for Loupe.
// It is built once at startup and passed by value or pointer into the
// components that need it; nothing reads it from global state.
type Config struct {
	// Proxy contains the public listener and destination settings.
	Proxy ProxyConfig `yaml:"proxy"`

	// Logging contains log level and request/response presentation settings.
	Logging LoggingConfig `yaml:"logging"`

	// Journal contains the optional exchange journal settings.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains the admin listener, metrics, tracing and health
	// settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig contains configuration for the public proxy listener.
type ProxyConfig struct {
	// HostAddress is the address the proxy listens on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Environment: HOST_ADDRESS. Required.
	HostAddress string `yaml:"host_address"`

	// DestinationURL is the base URL every request is forwarded to.
	// Must be an absolute http or https URL.
	// Environment: DESTINATION_URL. Required.
	DestinationURL string `yaml:"destination_url"`

	// ProxyProtocol accepts HAProxy PROXY v1/v2 headers on the listener so
	// the real client address is used for X-Forwarded-For.
	// Default: false
	ProxyProtocol bool `yaml:"proxy_protocol"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. A zero value means no timeout.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// DialTimeout bounds connection establishment to the destination.
	// Default: 10s
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ResponseHeaderTimeout bounds the wait for the destination's response
	// headers after the request is written. Zero means no timeout.
	// Default: 0
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`
}

// LoggingConfig contains logging and presentation configuration.
type LoggingConfig struct {
	// Level gates log verbosity.
	// Options: "critical", "normal", "debug", "off"
	// Environment: LOG_LEVEL. Default: "normal"
	Level string `yaml:"level"`

	// PrintStyle selects the request/response event envelope.
	// Options: "pretty", "plain", "json"
	// Environment: PRINT_STYLE. Default: "pretty"
	PrintStyle string `yaml:"print_style"`

	// PrettyFields pretty-prints body, headers and query inside events.
	// Unset means true for "pretty" and false otherwise.
	// Environment: PRETTY_FIELDS.
	PrettyFields *bool `yaml:"pretty_fields"`

	// Format is the operational log format ("json" or "text").
	// Unset means "json" for the json print style and "text" otherwise.
	Format string `yaml:"format"`

	// AddSource includes file and line number in operational logs.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// MaxBodyBytes truncates logged bodies. Forwarded bodies are never
	// truncated. Zero means unlimited.
	// Default: 0
	MaxBodyBytes int `yaml:"max_body_bytes"`

	// DecodeGzip logs gzip-encoded bodies decompressed.
	// Default: true
	DecodeGzip bool `yaml:"decode_gzip"`

	// RedactHeaders lists header names whose values are logged as
	// "[REDACTED]".
	RedactHeaders []string `yaml:"redact_headers"`

	// Watch reloads the log level when the configuration file changes.
	// Default: false
	Watch bool `yaml:"watch"`
}

// JournalConfig contains configuration for the exchange journal.
type JournalConfig struct {
	// Enabled controls whether exchanges are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "memory", "sqlite", "sqlite3", "redis"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains configuration shared by the "sqlite" (pure Go) and
	// "sqlite3" (cgo) backends.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Redis contains configuration for the "redis" stream backend.
	Redis RedisConfig `yaml:"redis"`

	// Memory contains configuration for the in-memory backend.
	Memory MemoryConfig `yaml:"memory"`

	// Recorder contains async recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RedisConfig contains configuration for the Redis stream backend.
type RedisConfig struct {
	// Address is the Redis server address.
	// Default: "localhost:6379"
	Address string `yaml:"address"`

	// Password is the optional Redis password.
	Password string `yaml:"password"`

	// DB is the Redis database number.
	// Default: 0
	DB int `yaml:"db"`

	// Stream is the stream key exchanges are appended to.
	// Default: "loupe:exchanges"
	Stream string `yaml:"stream"`
}

// MemoryConfig contains configuration for the in-memory backend.
type MemoryConfig struct {
	// MaxRecords caps the ring of retained exchanges.
	// Default: 10000
	MaxRecords int `yaml:"max_records"`
}

// RecorderConfig contains journal recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer. Exchanges
	// recorded while the buffer is full are dropped.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing one exchange to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain exchanges.
	// 0 means keep exchanges forever.
	// Default: 7
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of exchanges to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// AdminAddress is the listen address for health and metrics endpoints.
	// Empty disables the admin listener.
	// Default: ""
	AdminAddress string `yaml:"admin_address"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "loupe"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "proxy"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration (seconds).
	// Default: [0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio", "parent"
	// Default: "parent"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Used by the "ratio" and "parent" samplers.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP/gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "loupe"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
