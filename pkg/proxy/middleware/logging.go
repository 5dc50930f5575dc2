package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// LoggingMiddleware writes one access log line per request when the
// handler returns. Event streams are logged once they end, with the number
// of flushes they made. The context aware log handler adds the request ID.
//
// Server errors log at ERROR and client errors at WARN.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := context.WithValue(r.Context(), StartTimeKey, start)
			sr := newStatusRecorder(w)

			next.ServeHTTP(sr, r.WithContext(ctx))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sr.status),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
				slog.Int("bytes", sr.size),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if sr.flushes > 0 {
				attrs = append(attrs, slog.Int("flushes", sr.flushes))
			}
			logger.LogAttrs(ctx, levelFor(sr.status), "request completed", attrs...)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// StartTime returns when the logging middleware first saw the request, or
// the zero time outside it.
func StartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(StartTimeKey).(time.Time)
	return t
}
