package server

import (
	"net/http"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/telemetry/health"
	"mercator-hq/loupe/pkg/telemetry/metrics"
)

// BuildInfo identifies the running binary on the /version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// NewAdminMux returns the admin handler: health endpoints when checker is
// not nil and health is enabled, and the metrics endpoint when collector is
// not nil and metrics are enabled.
func NewAdminMux(cfg config.TelemetryConfig, checker *health.Checker, collector *metrics.Collector, info BuildInfo) *http.ServeMux {
	mux := http.NewServeMux()

	if checker != nil && cfg.Health.Enabled {
		checker.Register(mux, cfg.Health, info.Version, info.Commit, info.BuildTime)
	}

	if collector != nil && cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, collector.Handler())
	}

	return mux
}
