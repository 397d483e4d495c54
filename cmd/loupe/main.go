// Loupe is a logging reverse proxy.
//
// It forwards every request on its listen address to a single destination
// and logs each request and response with headers, query parameters and
// bodies, tagged with a shared correlation id.
//
// Usage:
//
//	# Start with environment configuration only
//	HOST_ADDRESS=0.0.0.0:8080 DESTINATION_URL=http://localhost:9000 loupe run
//
//	# Start with a configuration file and flag overrides
//	loupe run --config loupe.yaml --print-style json
//
//	# Check configuration without starting
//	loupe validate --config loupe.yaml
//
//	# Inspect recorded exchanges
//	loupe journal list --since 1h --failed
//
//	# Show version information
//	loupe version
package main

func main() {
	Execute()
}
