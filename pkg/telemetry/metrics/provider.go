package metrics

import (
	"mercator-hq/playground/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks metrics related to provider adapters.
//
// Metrics:
//   - playground_relay_errors_total: failed relays by provider and error kind
//   - playground_relay_adapters_initialized_total: adapters created by the registry
type ProviderMetrics struct {
	errors      *prometheus.CounterVec
	initialized *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "errors_total",
				Help:      "Total number of failed relays by error kind",
			},
			[]string{"provider", "kind"},
		),

		initialized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "adapters_initialized_total",
				Help:      "Total number of provider adapters created",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		pm.errors,
		pm.initialized,
	)

	return pm
}

// RecordError records a failed relay.
//
// Kinds are the labels returned by providers.Classify, e.g.
// "unsupported_provider", "not_configured", "transport", "malformed_frame".
func (pm *ProviderMetrics) RecordError(provider, kind string) {
	pm.errors.WithLabelValues(provider, kind).Inc()
}

// RecordInitialized records an adapter creation.
func (pm *ProviderMetrics) RecordInitialized(provider string) {
	pm.initialized.WithLabelValues(provider).Inc()
}
