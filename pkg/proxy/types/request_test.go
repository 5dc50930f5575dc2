package types

import (
	"testing"

	"mercator-hq/playground/pkg/providers"
)

func TestChatRequest_ToProviderRequest(t *testing.T) {
	zero := 0.0
	tokens := 32

	tests := []struct {
		name     string
		req      ChatRequest
		wantTemp float64
		wantMax  int
		wantTopP float64
	}{
		{
			name:     "defaults",
			req:      ChatRequest{Provider: "google", Model: "gemini-1.5-pro"},
			wantTemp: providers.DefaultTemperature,
			wantMax:  providers.DefaultMaxTokens,
			wantTopP: providers.DefaultTopP,
		},
		{
			name:     "explicit zero temperature",
			req:      ChatRequest{Provider: "google", Model: "gemini-1.5-pro", Temperature: &zero, MaxTokens: &tokens, TopP: &zero},
			wantTemp: 0,
			wantMax:  32,
			wantTopP: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.req.ToProviderRequest()
			if got.Provider != providers.Google {
				t.Errorf("provider = %q", got.Provider)
			}
			if got.Temperature != tt.wantTemp || got.MaxTokens != tt.wantMax || got.TopP != tt.wantTopP {
				t.Errorf("sampling = %v/%d/%v", got.Temperature, got.MaxTokens, got.TopP)
			}
			if got.Messages == nil {
				t.Error("messages should be an empty slice, not nil")
			}
		})
	}
}

func TestChatRequest_MessagesCopied(t *testing.T) {
	req := ChatRequest{
		Provider: "cohere",
		Messages: []Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
	}

	got := req.ToProviderRequest()
	if len(got.Messages) != 2 || got.Messages[0].Role != providers.RoleSystem || got.Messages[1].Content != "u" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestNewProvidersResponse(t *testing.T) {
	resp := NewProvidersResponse([]providers.ProviderID{providers.XAI, providers.Mistral})
	if len(resp.Providers) != 2 || resp.Providers[0] != "xai" || resp.Providers[1] != "mistral" {
		t.Errorf("providers = %v", resp.Providers)
	}
}
