// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common functionality
// across all HTTP requests including request ID generation, logging, CORS,
// panic recovery, and the per-request deadline.
//
// # Middleware Chain
//
// The server chains the middleware as:
//
//	handler = Recovery(RequestID(Logging(CORS(Timeout(handler)))))
//
// Order (outermost to innermost):
//  1. Recovery: Recover from panics
//  2. RequestID: Generate and propagate request ID
//  3. Logging: Log request/response details, request ID included
//  4. CORS: Add Cross-Origin Resource Sharing headers
//  5. Timeout: Set the per-request deadline
//
// # Streaming
//
// The response writer wrappers forward http.Flusher and expose Unwrap, so
// event streams are flushed frame by frame through the whole chain.
//
// # Timeouts
//
// TimeoutMiddleware only attaches a deadline to the request context. It never
// writes a response of its own: an expired deadline looks to the handler
// exactly like a client that went away.
package middleware
