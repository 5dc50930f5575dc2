package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	if got := New(0).checkTimeout; got != 2*time.Second {
		t.Errorf("default timeout = %v, want 2s", got)
	}
	if got := New(time.Second).checkTimeout; got != time.Second {
		t.Errorf("custom timeout = %v, want 1s", got)
	}
}

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name        string
		checks      map[string]CheckFunc
		wantHealthy bool
		wantStatus  map[string]string
	}{
		{
			name:        "no checks",
			wantHealthy: true,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"evidence": func(context.Context) error { return nil },
			},
			wantHealthy: true,
			wantStatus:  map[string]string{"evidence": StatusOK},
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"evidence": func(context.Context) error { return errors.New("database is locked") },
				"config":   func(context.Context) error { return nil },
			},
			wantHealthy: false,
			wantStatus:  map[string]string{"evidence": StatusUnhealthy, "config": StatusOK},
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"slow": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(50 * time.Millisecond)
					return nil
				},
			},
			wantHealthy: false,
			wantStatus:  map[string]string{"slow": StatusUnhealthy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(20 * time.Millisecond)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			healthy, results := checker.Check(context.Background())
			if healthy != tt.wantHealthy {
				t.Errorf("healthy = %v, want %v", healthy, tt.wantHealthy)
			}
			if len(results) != len(tt.wantStatus) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantStatus))
			}
			for name, want := range tt.wantStatus {
				if got := results[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestChecker_RegisterReplaces(t *testing.T) {
	checker := New(0)
	checker.RegisterCheck("evidence", func(context.Context) error { return errors.New("down") })
	checker.RegisterCheck("evidence", func(context.Context) error { return nil })

	if checker.CheckCount() != 1 {
		t.Errorf("CheckCount() = %d, want 1", checker.CheckCount())
	}
	if healthy, _ := checker.Check(context.Background()); !healthy {
		t.Error("expected replaced check to be used")
	}
}

func TestHandler(t *testing.T) {
	checker := New(0)

	rec := httptest.NewRecorder()
	checker.Handler()(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != OverallOK || resp.Message != Message {
		t.Errorf("unexpected body: %+v", resp)
	}
	if resp.Timestamp == 0 {
		t.Error("expected timestamp")
	}
	if resp.Checks != nil {
		t.Errorf("expected no checks in body, got %v", resp.Checks)
	}
}

func TestHandler_Degraded(t *testing.T) {
	checker := New(0)
	checker.RegisterCheck("evidence", func(context.Context) error { return errors.New("disk full") })

	rec := httptest.NewRecorder()
	checker.Handler()(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != OverallDegraded {
		t.Errorf("status = %q, want %q", resp.Status, OverallDegraded)
	}
	if resp.Checks["evidence"].Message != "disk full" {
		t.Errorf("unexpected check result: %+v", resp.Checks["evidence"])
	}
}

func TestHandler_Methods(t *testing.T) {
	checker := New(0)

	rec := httptest.NewRecorder()
	checker.Handler()(rec, httptest.NewRequest(http.MethodHead, "/api/health", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD: status %d, body %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	checker.Handler()(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: status %d, want 405", rec.Code)
	}
}
