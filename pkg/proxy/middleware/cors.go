package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"mercator-hq/playground/pkg/config"
)

// CORSConfig contains configuration for CORS middleware.
type CORSConfig struct {
	// Enabled controls whether CORS is enabled.
	Enabled bool

	// AllowedOrigins is a list of allowed origins for CORS.
	// Use ["*"] to allow all origins.
	AllowedOrigins []string

	// AllowedMethods is a list of allowed HTTP methods.
	AllowedMethods []string

	// AllowedHeaders is a list of allowed HTTP headers.
	AllowedHeaders []string

	// ExposedHeaders is a list of headers exposed to clients.
	ExposedHeaders []string

	// MaxAge is the maximum age (in seconds) for preflight cache.
	MaxAge int

	// AllowCredentials controls whether credentials are allowed.
	AllowCredentials bool
}

// DefaultCORSConfig returns the CORS configuration for the playground UI:
// the configured allow-list, credentials allowed, and the methods and
// headers the chat and providers endpoints use.
func DefaultCORSConfig(cfg config.CORSConfig) *CORSConfig {
	return &CORSConfig{
		Enabled:          len(cfg.AllowedOrigins) > 0,
		AllowedOrigins:   slices.Clone(cfg.AllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		MaxAge:           3600, // 1 hour
		AllowCredentials: true,
	}
}

// CORSMiddleware answers preflight requests and adds CORS headers for
// allowed origins. Header values are computed once from config.
//
// With AllowCredentials set, a wildcard entry echoes the request origin
// instead of "*", which browsers reject for credentialed requests.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	if !config.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	wildcard := slices.Contains(config.AllowedOrigins, "*")
	origins := make(map[string]bool, len(config.AllowedOrigins))
	for _, o := range config.AllowedOrigins {
		origins[o] = true
	}

	exposed := strings.Join(config.ExposedHeaders, ", ")
	preflight := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(config.AllowedMethods, ", "),
		"Access-Control-Allow-Headers": strings.Join(config.AllowedHeaders, ", "),
	}
	if config.MaxAge > 0 {
		preflight["Access-Control-Max-Age"] = strconv.Itoa(config.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin := r.Header.Get("Origin"); origin != "" && (wildcard || origins[origin]) {
				allow := origin
				if wildcard && !config.AllowCredentials {
					allow = "*"
				}
				h.Set("Access-Control-Allow-Origin", allow)
				if config.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if exposed != "" {
					h.Set("Access-Control-Expose-Headers", exposed)
				}
			}

			// Preflight requests never reach the handler.
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				for k, v := range preflight {
					if v != "" {
						h.Set(k, v)
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
