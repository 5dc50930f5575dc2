// Package handlers implements the relay's HTTP endpoints.
//
// # Endpoints
//
//   - ChatHandler: POST /api/chat, answers with an event stream
//   - ProvidersHandler: GET /api/chat/providers, lists provider identifiers
//
// The health endpoint is served by the telemetry/health checker.
//
// # Chat Streams
//
// The response framing follows the client's Accept header: Server-Sent
// Events "data:" frames by default, newline-delimited JSON for
// application/x-ndjson. Each frame is one event:
//
//	data: {"type":"start"}
//
//	data: {"type":"content","content":"Hel"}
//
//	data: {"type":"content","content":"lo"}
//
//	data: {"type":"end"}
//
// A request that cannot be decoded is rejected with a 400 JSON error body.
// Once the stream has started every failure, including an unknown provider,
// is reported as a final {"type":"error","message":...} frame.
//
// # Observability
//
// After each relay the handler notifies its RelayObserver, hands the
// summary to the EvidenceRecorder when one is set and logs one
// "relay completed" line with the outcome and timings.
package handlers
