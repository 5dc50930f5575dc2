package metrics

import (
	"time"

	"mercator-hq/playground/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics tracks per-relay metrics.
//
// Metrics:
//   - playground_relay_relays_total: relays by provider and outcome
//   - playground_relay_relay_duration_seconds: relay duration histogram
//   - playground_relay_time_to_first_content_seconds: latency to first text
//   - playground_relay_content_events_total: content events written
//   - playground_relay_active_streams: relays currently streaming
type RelayMetrics struct {
	relaysTotal        *prometheus.CounterVec
	relayDuration      *prometheus.HistogramVec
	timeToFirstContent *prometheus.HistogramVec
	contentEventsTotal *prometheus.CounterVec
	activeStreams      prometheus.Gauge
}

// NewRelayMetrics creates and registers relay metrics with the provided registry.
func NewRelayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RelayMetrics {
	rm := &RelayMetrics{
		relaysTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "relays_total",
				Help:      "Total number of relays by terminal outcome",
			},
			[]string{"provider", "outcome"},
		),

		relayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "relay_duration_seconds",
				Help:      "Duration of relays from start to terminal event in seconds",
				Buckets:   DurationBuckets,
			},
			[]string{"provider"},
		),

		timeToFirstContent: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "time_to_first_content_seconds",
				Help:      "Time from relay start to the first content event in seconds",
				Buckets:   FirstContentBuckets,
			},
			[]string{"provider"},
		),

		contentEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "content_events_total",
				Help:      "Total number of content events relayed",
			},
			[]string{"provider"},
		),

		activeStreams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "active_streams",
				Help:      "Number of relays currently streaming",
			},
		),
	}

	registry.MustRegister(
		rm.relaysTotal,
		rm.relayDuration,
		rm.timeToFirstContent,
		rm.contentEventsTotal,
		rm.activeStreams,
	)

	return rm
}

// RecordRelay records a finished relay.
func (rm *RelayMetrics) RecordRelay(provider, outcome string, duration time.Duration, contentEvents int) {
	rm.relaysTotal.WithLabelValues(provider, outcome).Inc()
	rm.relayDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if contentEvents > 0 {
		rm.contentEventsTotal.WithLabelValues(provider).Add(float64(contentEvents))
	}
}

// RecordFirstContent records the latency to the first content event.
func (rm *RelayMetrics) RecordFirstContent(provider string, latency time.Duration) {
	rm.timeToFirstContent.WithLabelValues(provider).Observe(latency.Seconds())
}
