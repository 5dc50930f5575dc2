// Package telemetry groups the relay's observability packages.
//
//   - logging: slog setup with context fields, credential redaction and
//     optional file rotation
//   - metrics: Prometheus relay metrics and the /metrics handler
//   - health: the /api/health endpoint and component checks
package telemetry
