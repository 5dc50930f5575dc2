// Package types defines the JSON request and response bodies of the relay's
// HTTP API.
//
// # Core Types
//
// Request types:
//   - ChatRequest: body of POST /api/chat, camelCase fields as sent by the UI
//   - Message: one conversation turn
//
// Response types:
//   - ProvidersResponse: body of GET /api/chat/providers
//
// Error types:
//   - ErrorResponse: rejection before the event stream begins
//   - ErrorDetail: error details with type, message, param, code
//
// The chat endpoint itself answers with an event stream; its frames are
// defined by the stream package, not here.
package types
