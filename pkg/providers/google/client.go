package google

import (
	"context"
	"iter"
	"log/slog"

	"google.golang.org/genai"

	"mercator-hq/playground/pkg/normalize"
	"mercator-hq/playground/pkg/providers"
)

// modelsClient is the subset of genai.Models the adapter uses.
type modelsClient interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

var newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// Provider is the Gemini adapter.
type Provider struct {
	*providers.HTTPAdapter
	models modelsClient
}

// NewProvider creates a Gemini adapter. The API key is required.
func NewProvider(config providers.AdapterConfig) (*Provider, error) {
	config.ID = providers.Google
	config = config.WithDefaults()

	if config.APIKey == "" {
		return nil, &providers.NotConfiguredError{Provider: config.ID, Setting: config.CredentialEnv}
	}

	base := providers.NewHTTPAdapter(config)
	clientConfig := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: base.Client(),
	}
	if config.BaseURL != providers.DefaultBaseURLs[providers.Google] {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := newGenaiClient(context.Background(), clientConfig)
	if err != nil {
		return nil, &providers.ConfigError{Provider: config.ID, Field: "client", Message: err.Error()}
	}

	slog.Info("Gemini adapter initialized",
		"provider", config.ID,
		"base_url", config.BaseURL,
	)

	return &Provider{HTTPAdapter: base, models: client.Models}, nil
}

// Normalize builds the history/prompt payload.
func (p *Provider) Normalize(req *providers.ChatRequest) (providers.NativeRequest, error) {
	return normalize.Turns(req)
}

// Stream opens a streaming generateContent call.
func (p *Provider) Stream(ctx context.Context, req providers.NativeRequest) iter.Seq[providers.Event] {
	payload, ok := req.(*normalize.TurnPayload)
	if !ok {
		return providers.Single(providers.ErrorEvent(providers.WrongPayload(providers.Google, req)))
	}

	contents, config := buildRequest(payload)
	return providers.ReaderEvents(ctx, func(ctx context.Context) (providers.StreamReader, error) {
		return newStreamReader(ctx, p.models.GenerateContentStream(ctx, payload.Model, contents, config)), nil
	})
}

// buildRequest converts the payload into SDK contents and generation config.
func buildRequest(payload *normalize.TurnPayload) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := make([]*genai.Content, 0, len(payload.History)+1)
	for _, turn := range payload.History {
		if turn.Role == "model" {
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: turn.Text}}})
			continue
		}
		contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: turn.Text}}})
	}
	contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: payload.Prompt}}})

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(payload.Temperature)),
		TopP:            genai.Ptr(float32(payload.TopP)),
		MaxOutputTokens: int32(payload.MaxOutputTokens),
	}
	return contents, config
}

var _ providers.Adapter = (*Provider)(nil)
