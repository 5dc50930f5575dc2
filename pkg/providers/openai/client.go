package openai

import (
	"context"
	"iter"
	"log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"mercator-hq/playground/pkg/normalize"
	"mercator-hq/playground/pkg/providers"
)

// Provider is the OpenAI adapter.
type Provider struct {
	*providers.HTTPAdapter
	client openai.Client
}

// NewProvider creates an OpenAI adapter. The API key is required.
func NewProvider(config providers.AdapterConfig) (*Provider, error) {
	config.ID = providers.OpenAI
	config = config.WithDefaults()

	if config.APIKey == "" {
		return nil, &providers.NotConfiguredError{Provider: config.ID, Setting: config.CredentialEnv}
	}

	base := providers.NewHTTPAdapter(config)
	client := openai.NewClient(
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(config.BaseURL),
		option.WithHTTPClient(base.Client()),
		option.WithMaxRetries(0),
	)

	slog.Info("OpenAI adapter initialized",
		"provider", config.ID,
		"base_url", config.BaseURL,
	)

	return &Provider{HTTPAdapter: base, client: client}, nil
}

// Normalize builds the chat completions payload.
func (p *Provider) Normalize(req *providers.ChatRequest) (providers.NativeRequest, error) {
	return normalize.ChatCompletion(providers.OpenAI, req)
}

// Stream opens a streaming chat completion.
func (p *Provider) Stream(ctx context.Context, req providers.NativeRequest) iter.Seq[providers.Event] {
	payload, ok := req.(*normalize.ChatCompletionPayload)
	if !ok {
		return providers.Single(providers.ErrorEvent(providers.WrongPayload(providers.OpenAI, req)))
	}

	params := buildParams(payload)
	return providers.ReaderEvents(ctx, func(ctx context.Context) (providers.StreamReader, error) {
		return newStreamReader(ctx, p.client, params)
	})
}

// buildParams converts the normalized payload into SDK parameters.
func buildParams(payload *normalize.ChatCompletionPayload) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(payload.Messages))
	for _, msg := range payload.Messages {
		switch msg.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(payload.Model),
		Messages:    messages,
		Temperature: openai.Float(payload.Temperature),
		MaxTokens:   openai.Int(int64(payload.MaxTokens)),
		TopP:        openai.Float(payload.TopP),
	}
}

var _ providers.Adapter = (*Provider)(nil)
