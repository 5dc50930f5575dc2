package middleware

import (
	"context"
	"net/http"

	"mercator-hq/playground/pkg/telemetry/logging"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength bounds client supplied IDs.
	maxRequestIDLength = 128
)

// RequestIDMiddleware assigns a request ID to every request and adds it to
// the context and response headers. A client supplied X-Request-ID is kept
// when it is present and reasonably short.
//
// The request ID is:
//   - Stored in the request context, where the log handler reads it
//   - Echoed in the X-Request-ID response header
//   - Written to evidence records for correlation
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = generateRequestID()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// generateRequestID returns a random UUID string.
func generateRequestID() string {
	return uuid.NewString()
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	return logging.GetRequestID(ctx)
}
