package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mercator-hq/playground/pkg/proxy"
	"mercator-hq/playground/pkg/proxy/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// Internal Server Error response as a JSON ErrorResponse. The panic is logged
// with its stack trace; no internal details reach the client.
//
// If the handler had already started writing (for example an event stream),
// no error body is written since the status line is gone.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newStatusRecorder(w)
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if rw.committed {
					return
				}

				errResp := types.NewServerError(
					"An internal error occurred. Please try again later.",
				)
				_ = proxy.WriteErrorResponse(rw, errResp)
			}
		}()

		next.ServeHTTP(rw, r)
	})
}
