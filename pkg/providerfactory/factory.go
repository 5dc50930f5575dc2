// Package providerfactory creates provider adapters and holds them in a
// lazily populated registry.
package providerfactory

import (
	"fmt"
	"log/slog"

	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/providers/anthropic"
	"mercator-hq/playground/pkg/providers/cohere"
	"mercator-hq/playground/pkg/providers/generic"
	"mercator-hq/playground/pkg/providers/google"
	"mercator-hq/playground/pkg/providers/openai"
)

// Constructor builds an adapter from a resolved configuration.
type Constructor func(config providers.AdapterConfig) (providers.Adapter, error)

// DefaultConstructors returns the adapter variant for every supported
// provider. Providers without a streaming adapter use the generic fallback.
func DefaultConstructors() map[providers.ProviderID]Constructor {
	return map[providers.ProviderID]Constructor{
		providers.OpenAI:     func(c providers.AdapterConfig) (providers.Adapter, error) { return openai.NewProvider(c) },
		providers.Anthropic:  func(c providers.AdapterConfig) (providers.Adapter, error) { return anthropic.NewProvider(c) },
		providers.Google:     func(c providers.AdapterConfig) (providers.Adapter, error) { return google.NewProvider(c) },
		providers.Cohere:     func(c providers.AdapterConfig) (providers.Adapter, error) { return cohere.NewProvider(c) },
		providers.XAI:        newGeneric,
		providers.DeepSeek:   newGeneric,
		providers.Mistral:    newGeneric,
		providers.Perplexity: newGeneric,
	}
}

func newGeneric(c providers.AdapterConfig) (providers.Adapter, error) {
	return generic.NewProvider(c)
}

// NewAdapter creates the adapter for config.ID with the default constructors.
//
// Example:
//
//	adapter, err := providerfactory.NewAdapter(providers.AdapterConfig{
//	    ID:     providers.OpenAI,
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
func NewAdapter(config providers.AdapterConfig) (providers.Adapter, error) {
	return newAdapter(DefaultConstructors(), config)
}

func newAdapter(constructors map[providers.ProviderID]Constructor, config providers.AdapterConfig) (providers.Adapter, error) {
	construct, ok := constructors[config.ID]
	if !ok {
		return nil, &providers.UnsupportedProviderError{Provider: string(config.ID)}
	}

	slog.Debug("creating adapter",
		"provider", config.ID,
		"base_url", config.BaseURL,
	)

	adapter, err := construct(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter %q: %w", config.ID, err)
	}
	return adapter, nil
}
