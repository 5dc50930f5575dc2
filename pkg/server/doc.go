// Package server provides the playground relay's HTTP server.
//
// The server ties together the adapter registry, the HTTP handlers and
// middleware, the metrics collector and the optional evidence pipeline, and
// manages their lifecycle.
//
// # Basic Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := server.New(cfg, server.WithLogger(logger.Logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//   - POST /api/chat - relay a chat request as an event stream
//   - GET /api/chat/providers - supported provider identifiers
//   - GET /api/health - liveness and evidence store health
//   - GET /metrics - Prometheus metrics (when enabled, path configurable)
//
// # Credentials and TLS
//
// Provider keys are read from the environment and, when credentials.dir is
// set, from one file per key in that directory. With server.tls enabled the
// listener serves HTTPS and picks up renewed certificates without a
// restart.
//
// # Middleware Chain
//
// Requests pass through, outermost first: recovery, request ID, access
// log, CORS and the request timeout.
//
// # Graceful Shutdown
//
// Start returns after SIGINT, SIGTERM, cancellation of its context or a
// call to Stop. Shutdown then:
//  1. Stops accepting new connections
//  2. Waits for in-flight relays (up to the shutdown timeout)
//  3. Stops the pruning schedule and drains the evidence recorder
//  4. Closes the evidence store and the adapter registry
package server
