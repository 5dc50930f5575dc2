package metrics

import (
	"sync"

	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/stream"

	"github.com/prometheus/client_golang/prometheus"
)

// Histogram buckets for relay latencies, in seconds.
var (
	// DurationBuckets cover full relays, which can stream for minutes.
	DurationBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

	// FirstContentBuckets cover the wait for the first visible text.
	FirstContentBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
)

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// Collector records relay metrics on a dedicated Prometheus registry.
//
// Every method is a no-op when metrics are disabled in the configuration.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	relayMetrics    *RelayMetrics
	providerMetrics *ProviderMetrics

	// Bounds provider label values, which come from client input.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "playground",
//		Subsystem: "relay",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		relayMetrics:       NewRelayMetrics(cfg, registry),
		providerMetrics:    NewProviderMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(64),
	}
}

// ObserveRelay records a finished relay: its outcome, duration, time to
// first content, content event count and, for failed relays, the error kind.
func (c *Collector) ObserveRelay(s stream.Summary) {
	if !c.config.Enabled {
		return
	}

	provider := c.providerLabel(string(s.Provider))

	c.relayMetrics.RecordRelay(provider, s.Outcome, s.Duration, s.ContentEvents)
	if s.ContentEvents > 0 {
		c.relayMetrics.RecordFirstContent(provider, s.TimeToFirstContent)
	}
	if s.Outcome == stream.OutcomeError {
		c.providerMetrics.RecordError(provider, s.ErrorKind)
	}
}

// StreamStarted increments the active streams gauge.
func (c *Collector) StreamStarted() {
	if !c.config.Enabled {
		return
	}
	c.relayMetrics.activeStreams.Inc()
}

// StreamFinished decrements the active streams gauge.
func (c *Collector) StreamFinished() {
	if !c.config.Enabled {
		return
	}
	c.relayMetrics.activeStreams.Dec()
}

// AdapterInitialized counts an adapter created by the registry. It has the
// signature of the registry's creation hook.
func (c *Collector) AdapterInitialized(id providers.ProviderID) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.RecordInitialized(string(id))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) providerLabel(provider string) string {
	if provider == "" {
		return otherLabel
	}
	if !c.cardinalityLimiter.Allow(provider) {
		return otherLabel
	}
	return provider
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
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

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if the limit has not been reached yet.
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
