// Package server provides the playground relay's HTTP server.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/evidence"
	"mercator-hq/playground/pkg/evidence/recorder"
	"mercator-hq/playground/pkg/evidence/retention"
	"mercator-hq/playground/pkg/evidence/storage"
	"mercator-hq/playground/pkg/providerfactory"
	"mercator-hq/playground/pkg/proxy"
	"mercator-hq/playground/pkg/proxy/handlers"
	"mercator-hq/playground/pkg/proxy/middleware"
	"mercator-hq/playground/pkg/proxy/types"
	"mercator-hq/playground/pkg/security/credentials"
	securityTLS "mercator-hq/playground/pkg/security/tls"
	"mercator-hq/playground/pkg/telemetry/health"
	"mercator-hq/playground/pkg/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Route paths.
const (
	ChatPath      = "/api/chat"
	ProvidersPath = "/api/chat/providers"
	HealthPath    = "/api/health"
)

// Server is the HTTP server of the relay. It owns the adapter registry,
// the metrics collector and, when enabled, the evidence pipeline.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger

	registry    *providerfactory.Registry
	credentials credentials.Chain
	collector   *metrics.Collector
	health      *health.Checker

	evidence evidence.Storage
	recorder *recorder.Recorder
	pruner   *retention.Pruner

	shutdownChan chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	registryOpts []providerfactory.Option
	promRegistry *prometheus.Registry
}

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistryOptions passes extra options to the adapter registry.
func WithRegistryOptions(opts ...providerfactory.Option) Option {
	return func(o *options) { o.registryOpts = append(o.registryOpts, opts...) }
}

// WithPrometheusRegistry sets the registry metrics are registered with.
func WithPrometheusRegistry(registry *prometheus.Registry) Option {
	return func(o *options) { o.promRegistry = registry }
}

// New assembles a server from cfg. It opens the evidence store when evidence
// is enabled; nothing listens until Start.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.promRegistry == nil {
		o.promRegistry = prometheus.NewRegistry()
	}

	s := &Server{
		config:       cfg,
		logger:       o.logger,
		collector:    metrics.NewCollector(&cfg.Telemetry.Metrics, o.promRegistry),
		health:       health.New(0),
		shutdownChan: make(chan struct{}),
	}

	chain, err := credentials.FromConfig(cfg.Credentials, o.logger)
	if err != nil {
		return nil, err
	}
	s.credentials = chain

	registryOpts := append([]providerfactory.Option{
		providerfactory.WithLookupEnv(chain.Lookup),
		providerfactory.WithOnCreate(s.collector.AdapterInitialized),
		providerfactory.WithLogger(o.logger),
	}, o.registryOpts...)
	s.registry = providerfactory.NewRegistry(cfg.ProviderSettings(), registryOpts...)

	if cfg.Evidence.Enabled {
		store, err := storage.New(cfg.Evidence)
		if err != nil {
			_ = chain.Close()
			return nil, fmt.Errorf("failed to open evidence storage: %w", err)
		}
		s.evidence = store
		s.recorder = recorder.NewRecorder(store, recorder.ConfigFrom(cfg.Evidence))
		s.pruner = retention.NewPruner(store, retention.ConfigFrom(cfg.Evidence))
		s.health.RegisterCheck("evidence", store.Ping)
	}

	return s, nil
}

// Start listens on the configured address and serves until ctx is done, a
// termination signal arrives, Stop is called or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	// Background work started here ends when Start returns.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	if tlsCfg := s.config.Server.TLS; tlsCfg.Enabled {
		tlsConfig, reloader, err := securityTLS.NewServerConfig(tlsCfg, s.logger)
		if err == nil {
			err = reloader.Start(ctx)
		}
		if err != nil {
			_ = ln.Close()
			s.mu.Unlock()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		ln = tls.NewListener(ln, tlsConfig)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.Server.ReadTimeout,
		ReadTimeout:       s.config.Server.ReadTimeout,
		IdleTimeout:       s.config.Server.IdleTimeout,
		// WriteTimeout stays zero; relays are bounded by RequestTimeout.
	}
	s.isRunning = true
	s.mu.Unlock()

	if s.pruner != nil {
		if err := s.pruner.Start(ctx); err != nil {
			s.logger.Warn("evidence pruning not scheduled", "error", err)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting playground relay",
			"address", ln.Addr().String(),
			"metrics", s.config.Telemetry.Metrics.Enabled,
			"evidence", s.config.Evidence.Enabled,
			"tls", s.config.Server.TLS.Enabled,
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully shuts down the server: it stops accepting
// connections, waits for in-flight relays up to the shutdown timeout, then
// flushes evidence and releases the adapters.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		s.mu.Unlock()

		if running {
			s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

			shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
			defer cancel()

			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		errs = append(errs, s.closeResources()...)

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("playground relay stopped")
	})

	return errors.Join(errs...)
}

func (s *Server) closeResources() []error {
	var errs []error
	if s.pruner != nil {
		s.pruner.Stop()
	}
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("evidence recorder: %w", err))
		}
	}
	if s.evidence != nil {
		if err := s.evidence.Close(); err != nil {
			errs = append(errs, fmt.Errorf("evidence storage: %w", err))
		}
	}
	if err := s.registry.Close(); err != nil {
		errs = append(errs, fmt.Errorf("adapter registry: %w", err))
	}
	if err := s.credentials.Close(); err != nil {
		errs = append(errs, fmt.Errorf("credentials: %w", err))
	}
	return errs
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	chatOpts := []handlers.ChatOption{
		handlers.WithObserver(s.collector),
		handlers.WithLogger(s.logger),
	}
	if s.recorder != nil {
		chatOpts = append(chatOpts, handlers.WithRecorder(s.recorder))
	}

	mux.Handle(ChatPath, handlers.NewChatHandler(s.registry, chatOpts...))
	mux.Handle(ProvidersPath, handlers.NewProvidersHandler(s.registry))
	mux.Handle(HealthPath, s.health.Handler())
	if s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_ = proxy.WriteErrorResponse(w, types.NewNotFoundError("no route for "+r.URL.Path))
	})

	var handler http.Handler = mux
	handler = middleware.TimeoutMiddleware(s.config.Server.RequestTimeout)(handler)
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig(s.config.Server.CORS))(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Registry returns the adapter registry.
func (s *Server) Registry() *providerfactory.Registry {
	return s.registry
}

// Evidence returns the evidence store, or nil when evidence is disabled.
func (s *Server) Evidence() evidence.Storage {
	return s.evidence
}
