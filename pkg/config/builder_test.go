package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts from the defaults plus the required proxy addresses.
type ConfigBuilder struct {
	cfg *Config
}

// NewTestConfig creates a ConfigBuilder whose result passes Validate.
func NewTestConfig() *ConfigBuilder {
	cfg := NewDefault()
	cfg.Proxy.HostAddress = "127.0.0.1:8080"
	cfg.Proxy.DestinationURL = "http://localhost:3000"
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

func (b *ConfigBuilder) WithHostAddress(addr string) *ConfigBuilder {
	b.cfg.Proxy.HostAddress = addr
	return b
}

func (b *ConfigBuilder) WithDestination(raw string) *ConfigBuilder {
	b.cfg.Proxy.DestinationURL = raw
	return b
}

func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Proxy.ReadTimeout = d
	return b
}

func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Logging.Level = level
	return b
}

func (b *ConfigBuilder) WithPrintStyle(style string) *ConfigBuilder {
	b.cfg.Logging.PrintStyle = style
	return b
}

func (b *ConfigBuilder) WithPrettyFields(pretty bool) *ConfigBuilder {
	b.cfg.Logging.PrettyFields = &pretty
	return b
}

// WithJournal enables the journal on the given backend.
func (b *ConfigBuilder) WithJournal(backend string) *ConfigBuilder {
	b.cfg.Journal.Enabled = true
	b.cfg.Journal.Backend = backend
	return b
}

func (b *ConfigBuilder) WithTracing(endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}

// envMap returns a LookupFunc backed by a map.
func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
