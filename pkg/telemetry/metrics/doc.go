// Package metrics provides Prometheus metrics for the playground relay.
//
// # Metrics
//
// With the default namespace "playground" and subsystem "relay":
//
//   - playground_relay_relays_total{provider,outcome}
//   - playground_relay_relay_duration_seconds{provider}
//   - playground_relay_time_to_first_content_seconds{provider}
//   - playground_relay_content_events_total{provider}
//   - playground_relay_errors_total{provider,kind}
//   - playground_relay_adapters_initialized_total{provider}
//   - playground_relay_active_streams
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	registry := providerfactory.NewRegistry(settings,
//		providerfactory.WithOnCreate(collector.AdapterInitialized))
//
//	collector.StreamStarted()
//	summary := mux.Run(ctx, registry, req)
//	collector.StreamFinished()
//	collector.ObserveRelay(summary)
//
//	mux.Handle("/metrics", collector.Handler())
//
// # Cardinality Management
//
// Provider labels are limited to 64 distinct values; further values are
// aggregated into "other".
package metrics
