package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultDialTimeout     = 10 * time.Second

	// Logging defaults
	DefaultLoggingLevel      = "normal"
	DefaultPrintStyle        = "pretty"
	DefaultLoggingDecodeGzip = true

	// Journal defaults
	DefaultJournalEnabled              = false
	DefaultJournalBackend              = "sqlite"
	DefaultJournalSQLitePath           = "data/journal.db"
	DefaultJournalSQLiteMaxOpenConns   = 10
	DefaultJournalSQLiteMaxIdleConns   = 5
	DefaultJournalSQLiteWALMode        = true
	DefaultJournalSQLiteBusyTimeout    = 5 * time.Second
	DefaultJournalRedisAddress         = "localhost:6379"
	DefaultJournalRedisStream          = "loupe:exchanges"
	DefaultJournalMemoryMaxRecords     = 10000
	DefaultJournalRecorderAsyncBuffer  = 1000
	DefaultJournalRecorderWriteTimeout = 5 * time.Second
	DefaultJournalRetentionDays        = 7
	DefaultJournalRetentionSchedule    = "0 3 * * *"

	// Telemetry defaults
	DefaultMetricsEnabled      = true
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "loupe"
	DefaultMetricsSubsystem    = "proxy"
	DefaultTracingEnabled      = false
	DefaultTracingSampler      = "parent"
	DefaultTracingSampleRatio  = 1.0
	DefaultTracingServiceName  = "loupe"
	DefaultOTLPInsecure        = true
	DefaultOTLPTimeout         = 10 * time.Second
	DefaultHealthEnabled       = true
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
	DefaultHealthCheckTimeout  = 5 * time.Second
)

// DefaultRequestDurationBuckets are the request duration histogram buckets
// in seconds.
var DefaultRequestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// NewDefault returns a configuration with every default applied. The
// required proxy addresses are left empty.
//
// Loading decodes YAML on top of this value, so boolean options whose
// default is true stay true unless a file or the environment sets them.
func NewDefault() *Config {
	cfg := &Config{
		Logging: LoggingConfig{
			DecodeGzip: DefaultLoggingDecodeGzip,
		},
		Journal: JournalConfig{
			Enabled: DefaultJournalEnabled,
			SQLite: SQLiteConfig{
				WALMode: DefaultJournalSQLiteWALMode,
			},
			Retention: RetentionConfig{
				Days: DefaultJournalRetentionDays,
			},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{
				Enabled: DefaultTracingEnabled,
				OTLP:    OTLPConfig{Insecure: DefaultOTLPInsecure},
			},
			Health: HealthConfig{Enabled: DefaultHealthEnabled},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued field that has a default. Fields
// already set are preserved. Booleans are not touched: their defaults come
// from NewDefault.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.WriteTimeout == 0 {
		cfg.Proxy.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Proxy.DialTimeout == 0 {
		cfg.Proxy.DialTimeout = DefaultDialTimeout
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.PrintStyle == "" {
		cfg.Logging.PrintStyle = DefaultPrintStyle
	}

	// Journal defaults
	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.SQLite.Path == "" {
		cfg.Journal.SQLite.Path = DefaultJournalSQLitePath
	}
	if cfg.Journal.SQLite.MaxOpenConns == 0 {
		cfg.Journal.SQLite.MaxOpenConns = DefaultJournalSQLiteMaxOpenConns
	}
	if cfg.Journal.SQLite.MaxIdleConns == 0 {
		cfg.Journal.SQLite.MaxIdleConns = DefaultJournalSQLiteMaxIdleConns
	}
	if cfg.Journal.SQLite.BusyTimeout == 0 {
		cfg.Journal.SQLite.BusyTimeout = DefaultJournalSQLiteBusyTimeout
	}
	if cfg.Journal.Redis.Address == "" {
		cfg.Journal.Redis.Address = DefaultJournalRedisAddress
	}
	if cfg.Journal.Redis.Stream == "" {
		cfg.Journal.Redis.Stream = DefaultJournalRedisStream
	}
	if cfg.Journal.Memory.MaxRecords == 0 {
		cfg.Journal.Memory.MaxRecords = DefaultJournalMemoryMaxRecords
	}
	if cfg.Journal.Recorder.AsyncBuffer == 0 {
		cfg.Journal.Recorder.AsyncBuffer = DefaultJournalRecorderAsyncBuffer
	}
	if cfg.Journal.Recorder.WriteTimeout == 0 {
		cfg.Journal.Recorder.WriteTimeout = DefaultJournalRecorderWriteTimeout
	}
	if cfg.Journal.Retention.PruneSchedule == "" {
		cfg.Journal.Retention.PruneSchedule = DefaultJournalRetentionSchedule
	}

	// Telemetry defaults
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.RequestDurationBuckets) == 0 {
		cfg.Metrics.RequestDurationBuckets = append([]float64(nil), DefaultRequestDurationBuckets...)
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.OTLP.Timeout == 0 {
		cfg.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
