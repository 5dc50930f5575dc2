package anthropic

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"

	"mercator-hq/playground/pkg/normalize"
	"mercator-hq/playground/pkg/providers"
)

const (
	// DefaultAnthropicVersion is the API version to use
	DefaultAnthropicVersion = "2023-06-01"
)

// Provider is the Anthropic adapter.
type Provider struct {
	*providers.HTTPAdapter
}

// NewProvider creates an Anthropic adapter. The API key is required.
func NewProvider(config providers.AdapterConfig) (*Provider, error) {
	config.ID = providers.Anthropic
	config = config.WithDefaults()

	if config.APIKey == "" {
		return nil, &providers.NotConfiguredError{Provider: config.ID, Setting: config.CredentialEnv}
	}

	p := &Provider{HTTPAdapter: providers.NewHTTPAdapter(config)}

	slog.Info("Anthropic adapter initialized",
		"provider", config.ID,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// Normalize builds the messages payload.
func (p *Provider) Normalize(req *providers.ChatRequest) (providers.NativeRequest, error) {
	return normalize.Messages(req)
}

// Stream opens a streaming messages call.
func (p *Provider) Stream(ctx context.Context, req providers.NativeRequest) iter.Seq[providers.Event] {
	payload, ok := req.(*normalize.MessagesPayload)
	if !ok {
		return providers.Single(providers.ErrorEvent(providers.WrongPayload(providers.Anthropic, req)))
	}

	return providers.ReaderEvents(ctx, func(ctx context.Context) (providers.StreamReader, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		headers := map[string]string{
			"x-api-key":         p.Config().APIKey,
			"anthropic-version": DefaultAnthropicVersion,
			"Content-Type":      "application/json",
			"Accept":            "text/event-stream",
		}

		resp, err := p.DoRequest(ctx, "POST", p.URL("/v1/messages"), body, headers)
		if err != nil {
			return nil, err
		}
		return newStreamReader(resp.Body), nil
	})
}

var _ providers.Adapter = (*Provider)(nil)
