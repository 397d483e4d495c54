// Package config provides configuration management for Loupe.
//
// Configuration is built once at startup and handed to the components that
// need it. Values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from an optional YAML file
//  3. Environment variable overrides
//  4. Command-line flags (applied by cmd/loupe)
//  5. Validation (fails fast if invalid)
//
// # Environment Variables
//
// The proxy's core settings use unprefixed names:
//
//   - HOST_ADDRESS: address to listen on, e.g. "0.0.0.0:8080" (required)
//   - DESTINATION_URL: base URL requests are forwarded to (required)
//   - LOG_LEVEL: critical, normal, debug or off (default normal)
//   - PRINT_STYLE: pretty, plain or json (default pretty)
//   - PRETTY_FIELDS: pretty-print body, headers and query inside events
//
// Everything else uses the LOUPE_ prefix, for example LOUPE_JOURNAL_BACKEND
// or LOUPE_ADMIN_ADDRESS.
//
// # Validation
//
// Validation errors include field paths and are reported together:
//
//	configuration validation failed with 2 errors:
//	  - proxy.host_address: host address is required (set HOST_ADDRESS)
//	  - logging.print_style: unknown print style "fancy"
//
// # Example Configuration
//
//	proxy:
//	  host_address: "127.0.0.1:8080"
//	  destination_url: "http://localhost:3000"
//
//	logging:
//	  level: "debug"
//	  print_style: "json"
//	  redact_headers: ["Authorization"]
//
//	journal:
//	  enabled: true
//	  backend: "sqlite"
//
// # Reloading
//
// When logging.watch is set, Watcher observes the configuration file and
// LevelReloader applies a changed log level without a restart.
package config
