package providerfactory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"mercator-hq/playground/pkg/providers"
)

// Registry holds at most one adapter per provider, created on first use.
//
// Credentials are resolved when an adapter is created: the configured API
// key if set, otherwise the provider's credential environment variable.
// Later environment changes are not observed for an adapter that already
// exists. A failed creation is not cached, so a credential added before the
// next request is picked up then.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[providers.ProviderID]providers.Adapter

	settings     map[providers.ProviderID]providers.AdapterConfig
	constructors map[providers.ProviderID]Constructor
	lookupEnv    func(string) (string, bool)
	onCreate     func(providers.ProviderID)
	logger       *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithConstructor replaces the constructor for one provider.
func WithConstructor(id providers.ProviderID, c Constructor) Option {
	return func(r *Registry) { r.constructors[id] = c }
}

// WithLookupEnv sets the function used to read credential variables.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Registry) { r.lookupEnv = fn }
}

// WithOnCreate registers a callback run once per created adapter.
func WithOnCreate(fn func(providers.ProviderID)) Option {
	return func(r *Registry) { r.onCreate = fn }
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty registry. settings holds per-provider
// overrides; providers missing from it use their defaults.
func NewRegistry(settings map[providers.ProviderID]providers.AdapterConfig, opts ...Option) *Registry {
	r := &Registry{
		adapters:     make(map[providers.ProviderID]providers.Adapter),
		settings:     settings,
		constructors: DefaultConstructors(),
		lookupEnv:    os.LookupEnv,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the adapter for name, creating it on first use.
func (r *Registry) Get(name string) (providers.Adapter, error) {
	id, err := providers.ParseProviderID(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	adapter, ok := r.adapters[id]
	r.mu.RUnlock()
	if ok {
		return adapter, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter, ok := r.adapters[id]; ok {
		return adapter, nil
	}

	config, err := r.resolve(id)
	if err != nil {
		return nil, err
	}

	adapter, err = newAdapter(r.constructors, config)
	if err != nil {
		r.logger.Warn("adapter creation failed", "provider", id, "error", err)
		return nil, err
	}
	r.adapters[id] = adapter

	r.logger.Info("adapter registered",
		"provider", id,
		"total_adapters", len(r.adapters),
	)
	if r.onCreate != nil {
		r.onCreate(id)
	}
	return adapter, nil
}

// resolve builds the creation-time configuration for id.
func (r *Registry) resolve(id providers.ProviderID) (providers.AdapterConfig, error) {
	config := r.settings[id]
	config.ID = id
	config = config.WithDefaults()

	if config.APIKey == "" {
		if key, ok := r.lookupEnv(config.CredentialEnv); ok {
			config.APIKey = key
		}
	}
	if config.APIKey == "" {
		return config, &providers.NotConfiguredError{Provider: id, Setting: config.CredentialEnv}
	}
	return config, nil
}

// Configured reports whether a credential is currently available for id.
func (r *Registry) Configured(id providers.ProviderID) bool {
	_, err := r.resolve(id)
	return err == nil
}

// Providers returns the supported provider identifiers in display order.
func (r *Registry) Providers() []providers.ProviderID {
	return providers.SupportedProviders()
}

// Initialized returns the number of adapters created so far.
func (r *Registry) Initialized() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// Close closes every created adapter that holds resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, adapter := range r.adapters {
		closer, ok := adapter.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close adapter %q: %w", id, err))
		}
	}
	r.adapters = make(map[providers.ProviderID]providers.Adapter)

	r.logger.Info("provider registry closed")
	return errors.Join(errs...)
}
