package health

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CheckFunc reports whether one component can serve requests. A nil error
// means healthy.
type CheckFunc func(ctx context.Context) error

// Component check statuses.
const (
	StatusOK        = "ok"
	StatusUnhealthy = "unhealthy"
)

const defaultCheckTimeout = 2 * time.Second

var errCheckTimeout = errors.New("health check timeout")

// CheckResult is the outcome of one component's check.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func resultOf(err error) CheckResult {
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Message: err.Error()}
	}
	return CheckResult{Status: StatusOK}
}

// Checker holds the named component checks behind the health endpoint.
type Checker struct {
	mu           sync.RWMutex
	checks       map[string]CheckFunc
	checkTimeout time.Duration
}

// New creates a checker that gives each check checkTimeout to answer, or
// two seconds when checkTimeout is zero.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = defaultCheckTimeout
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck adds or replaces the check for name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

// CheckCount returns the number of registered checks.
func (c *Checker) CheckCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.checks)
}

// Check runs every check in parallel. It returns true when all of them
// pass, along with the per-component results (nil with no checks).
func (c *Checker) Check(ctx context.Context) (bool, map[string]CheckResult) {
	c.mu.RLock()
	if len(c.checks) == 0 {
		c.mu.RUnlock()
		return true, nil
	}
	type named struct {
		name   string
		result CheckResult
	}
	out := make(chan named, len(c.checks))
	for name, check := range c.checks {
		go func() { out <- named{name, resultOf(c.run(ctx, check))} }()
	}
	n := len(c.checks)
	c.mu.RUnlock()

	healthy := true
	results := make(map[string]CheckResult, n)
	for range n {
		r := <-out
		results[r.name] = r.result
		healthy = healthy && r.result.Status == StatusOK
	}
	return healthy, results
}

// run calls check with a deadline. A check that ignores its context is
// abandoned when the deadline passes.
func (c *Checker) run(ctx context.Context, check CheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errCheckTimeout
	}
}
