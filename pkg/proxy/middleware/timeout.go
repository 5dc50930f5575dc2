package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds each request's wall-clock time with
// context.WithTimeout. It only sets the deadline: the handler runs on the
// request goroutine and observes expiry exactly as it observes a client
// disconnect, through ctx.Done(). Nothing is written on timeout, so a
// response that is already streaming stays well-formed.
//
// A non-positive timeout disables the middleware.
//
// Example usage:
//
//	handler = TimeoutMiddleware(2 * time.Minute)(handler)
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
