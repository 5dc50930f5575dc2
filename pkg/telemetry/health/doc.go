// Package health serves the relay's health endpoint.
//
// Components such as the evidence store register a CheckFunc; the endpoint
// runs all checks concurrently with a per-check timeout.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("evidence", store.Ping)
//	mux.Handle("GET /api/health", checker.Handler())
package health
