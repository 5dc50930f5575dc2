package cohere

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"

	"mercator-hq/playground/pkg/normalize"
	"mercator-hq/playground/pkg/providers"
)

// Provider is the Cohere adapter.
type Provider struct {
	*providers.HTTPAdapter
}

// NewProvider creates a Cohere adapter. The API key is required.
func NewProvider(config providers.AdapterConfig) (*Provider, error) {
	config.ID = providers.Cohere
	config = config.WithDefaults()

	if config.APIKey == "" {
		return nil, &providers.NotConfiguredError{Provider: config.ID, Setting: config.CredentialEnv}
	}

	p := &Provider{HTTPAdapter: providers.NewHTTPAdapter(config)}

	slog.Info("Cohere adapter initialized",
		"provider", config.ID,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// Normalize builds the chat payload.
func (p *Provider) Normalize(req *providers.ChatRequest) (providers.NativeRequest, error) {
	return normalize.CohereChat(req)
}

// Stream opens a streaming chat call.
func (p *Provider) Stream(ctx context.Context, req providers.NativeRequest) iter.Seq[providers.Event] {
	payload, ok := req.(*normalize.CohereChatPayload)
	if !ok {
		return providers.Single(providers.ErrorEvent(providers.WrongPayload(providers.Cohere, req)))
	}

	return providers.ReaderEvents(ctx, func(ctx context.Context) (providers.StreamReader, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		headers := map[string]string{
			"Authorization": "Bearer " + p.Config().APIKey,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		}

		resp, err := p.DoRequest(ctx, "POST", p.URL("/v1/chat"), body, headers)
		if err != nil {
			return nil, err
		}
		return newStreamReader(resp.Body), nil
	})
}

var _ providers.Adapter = (*Provider)(nil)
