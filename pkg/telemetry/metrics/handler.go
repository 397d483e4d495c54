package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler for the Prometheus metrics endpoint,
// mounted on the admin listener at MetricsConfig.Path. A nil or disabled
// collector serves 404 so the route can be registered unconditionally.
func (c *Collector) Handler() http.Handler {
	if !c.enabled() {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
			// One scrape at a time is plenty for an admin port.
			MaxRequestsInFlight: 1,
		},
	)
}
