package types

import "mercator-hq/playground/pkg/providers"

// ChatRequest is the JSON body of POST /api/chat. Sampling parameters are
// pointers so an omitted field can be told apart from an explicit zero.
type ChatRequest struct {
	Provider           string    `json:"provider"`
	Model              string    `json:"model"`
	Messages           []Message `json:"messages"`
	Temperature        *float64  `json:"temperature,omitempty"`
	MaxTokens          *int      `json:"maxTokens,omitempty"`
	TopP               *float64  `json:"topP,omitempty"`
	SystemInstructions string    `json:"systemInstructions,omitempty"`
}

// Message is one conversation turn as sent by the UI.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToProviderRequest builds the relay request, filling omitted sampling
// parameters with the defaults. Ranges and roles are not checked here; the
// normalizer rejects them as error events.
func (r *ChatRequest) ToProviderRequest() *providers.ChatRequest {
	req := &providers.ChatRequest{
		Provider:           providers.ProviderID(r.Provider),
		Model:              r.Model,
		Messages:           make([]providers.ChatMessage, 0, len(r.Messages)),
		Temperature:        providers.DefaultTemperature,
		MaxTokens:          providers.DefaultMaxTokens,
		TopP:               providers.DefaultTopP,
		SystemInstructions: r.SystemInstructions,
	}
	for _, m := range r.Messages {
		req.Messages = append(req.Messages, providers.ChatMessage{Role: m.Role, Content: m.Content})
	}
	if r.Temperature != nil {
		req.Temperature = *r.Temperature
	}
	if r.MaxTokens != nil {
		req.MaxTokens = *r.MaxTokens
	}
	if r.TopP != nil {
		req.TopP = *r.TopP
	}
	return req
}
