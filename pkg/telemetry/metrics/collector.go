package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"mercator-hq/loupe/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric exported by Loupe. A nil
// *Collector is valid and records nothing, so components can take one
// unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
	journalMetrics  *JournalMetrics

	// Method labels come from clients, so they are capped.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics with registry.
// If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "loupe",
//		Subsystem: "proxy",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = append([]float64(nil), config.DefaultRequestDurationBuckets...)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(32),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.journalMetrics = NewJournalMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRequest records a completed request and the status sent to the
// client.
//
// Example:
//
//	collector.RecordRequest("GET", 200, 12*time.Millisecond)
func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordRequest(c.methodLabel(method), StatusClass(status), duration)
}

// RecordBodySize records a captured body size. Direction is "request" or
// "response".
func (c *Collector) RecordBodySize(direction string, size int) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordSize(direction, size)
}

// RecordEvent counts an emitted request or response log event.
func (c *Collector) RecordEvent(eventType string) {
	if !c.enabled() {
		return
	}

	c.requestMetrics.RecordEvent(eventType)
}

// RecordForward records the latency of one forward call.
func (c *Collector) RecordForward(duration time.Duration) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordLatency(duration.Seconds())
}

// RecordFailure counts a failed forward call by failure kind
// ("transport", "invalid_destination", "other").
func (c *Collector) RecordFailure(kind string) {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.RecordFailure(kind)
}

// ForwardStarted increments the in-flight gauge. Pair every call with
// ForwardDone.
func (c *Collector) ForwardStarted() {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.inFlight.Inc()
}

// ForwardDone decrements the in-flight gauge.
func (c *Collector) ForwardDone() {
	if !c.enabled() {
		return
	}

	c.upstreamMetrics.inFlight.Dec()
}

// RecordJournalWrite records the outcome of writing one exchange.
func (c *Collector) RecordJournalWrite(backend string, err error) {
	if !c.enabled() {
		return
	}

	c.journalMetrics.RecordWrite(backend, err == nil)
}

// RecordJournalDrop counts an exchange dropped because the recorder buffer
// was full.
func (c *Collector) RecordJournalDrop() {
	if !c.enabled() {
		return
	}

	c.journalMetrics.dropsTotal.Inc()
}

// UpdateJournalQueue sets the number of exchanges waiting to be written.
func (c *Collector) UpdateJournalQueue(depth int) {
	if !c.enabled() {
		return
	}

	c.journalMetrics.queueDepth.Set(float64(depth))
}

// RecordJournalPruned counts exchanges removed by retention.
func (c *Collector) RecordJournalPruned(count int64) {
	if !c.enabled() {
		return
	}

	c.journalMetrics.RecordPruned(count)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// methodLabel collapses unknown methods into "other" once the limiter is
// full.
func (c *Collector) methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	}
	if c.cardinalityLimiter.Allow(method) {
		return method
	}
	return "other"
}

// StatusClass returns the status class label ("2xx", "5xx", ...) for code.
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values it admits.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether labelSet is admitted: it was seen before or the
// limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
