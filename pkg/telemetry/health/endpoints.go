package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Overall statuses reported by Handler.
const (
	OverallOK       = "OK"
	OverallDegraded = "DEGRADED"
)

// Message is the human-readable line of a healthy response.
const Message = "LLM Playground Backend is running"

// Response is the body of the health endpoint.
type Response struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Timestamp int64                  `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Handler returns an HTTP handler for the health endpoint.
//
// Example response:
//
//	{
//	    "status": "OK",
//	    "message": "LLM Playground Backend is running",
//	    "timestamp": 1763634600000
//	}
//
// A failing component check turns the status into "DEGRADED" with
// 503 Service Unavailable. The timestamp is in Unix milliseconds.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		healthy, results := c.Check(r.Context())

		resp := Response{
			Status:    OverallOK,
			Message:   Message,
			Timestamp: time.Now().UnixMilli(),
			Checks:    results,
		}
		code := http.StatusOK
		if !healthy {
			resp.Status = OverallDegraded
			resp.Message = "one or more components are unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(resp)
		}
	}
}
