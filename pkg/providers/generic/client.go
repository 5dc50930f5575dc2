package generic

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"mercator-hq/playground/pkg/normalize"
	"mercator-hq/playground/pkg/providers"
)

// emptyResponse replaces an empty completion so the caller always sees text.
const emptyResponse = "No response generated"

var errNoChoices = errors.New("response has no choices")

// completion is the subset of the chat completions response the adapter reads.
type completion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Provider is the blocking OpenAI-compatible adapter.
type Provider struct {
	*providers.HTTPAdapter
}

// NewProvider creates a fallback adapter for config.ID.
func NewProvider(config providers.AdapterConfig) (*Provider, error) {
	if config.ID == "" {
		return nil, &providers.ConfigError{Provider: "generic", Field: "id", Message: "provider id is required"}
	}
	config = config.WithDefaults()

	if config.BaseURL == "" {
		return nil, &providers.ConfigError{Provider: config.ID, Field: "base_url", Message: "base URL is required"}
	}
	if config.APIKey == "" {
		return nil, &providers.NotConfiguredError{Provider: config.ID, Setting: config.CredentialEnv}
	}

	p := &Provider{HTTPAdapter: providers.NewHTTPAdapter(config)}

	slog.Info("Generic OpenAI-compatible adapter initialized",
		"provider", config.ID,
		"base_url", config.BaseURL,
		"type", "generic",
	)

	return p, nil
}

// Normalize builds an OpenAI-compatible chat completions payload.
func (p *Provider) Normalize(req *providers.ChatRequest) (providers.NativeRequest, error) {
	return normalize.ChatCompletion(p.ID(), req)
}

// Stream performs one blocking call and yields its text as a single event.
func (p *Provider) Stream(ctx context.Context, req providers.NativeRequest) iter.Seq[providers.Event] {
	payload, ok := req.(*normalize.ChatCompletionPayload)
	if !ok || payload.Provider != p.ID() {
		return providers.Single(providers.ErrorEvent(providers.WrongPayload(p.ID(), req)))
	}

	return func(yield func(providers.Event) bool) {
		text, err := p.complete(ctx, payload)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			yield(providers.ErrorEvent(err))
			return
		}
		if !yield(providers.ContentEvent(text)) {
			return
		}
		yield(providers.EndEvent())
	}
}

func (p *Provider) complete(ctx context.Context, payload *normalize.ChatCompletionPayload) (string, error) {
	body := *payload
	body.Stream = false

	headers := map[string]string{
		"Authorization": "Bearer " + p.Config().APIKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}

	var resp completion
	if err := p.DoJSONRequest(ctx, "POST", p.URL("/chat/completions"), &body, &resp, headers); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &providers.MalformedFrameError{Provider: p.ID(), Cause: errNoChoices}
	}

	text := resp.Choices[0].Message.Content
	if text == "" {
		text = emptyResponse
	}
	return text, nil
}

var _ providers.Adapter = (*Provider)(nil)
