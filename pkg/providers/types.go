package providers

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ProviderID identifies one backend from the closed set the relay supports.
type ProviderID string

// Supported provider identifiers.
const (
	OpenAI     ProviderID = "openai"
	Anthropic  ProviderID = "anthropic"
	Google     ProviderID = "google"
	Cohere     ProviderID = "cohere"
	XAI        ProviderID = "xai"
	DeepSeek   ProviderID = "deepseek"
	Mistral    ProviderID = "mistral"
	Perplexity ProviderID = "perplexity"
)

var supported = []ProviderID{OpenAI, Anthropic, Google, Cohere, XAI, DeepSeek, Mistral, Perplexity}

// SupportedProviders returns the enumerated provider set in display order.
// The returned slice is a copy and may be modified by the caller.
func SupportedProviders() []ProviderID {
	return slices.Clone(supported)
}

// ParseProviderID validates s against the supported set. Unknown values
// are an error, never a default.
func ParseProviderID(s string) (ProviderID, error) {
	id := ProviderID(s)
	if !slices.Contains(supported, id) {
		return "", &UnsupportedProviderError{Provider: s}
	}
	return id, nil
}

// String implements fmt.Stringer.
func (id ProviderID) String() string {
	return string(id)
}

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Default sampling parameters applied when the client omits them.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
	DefaultTopP        = 1.0
)

// ChatMessage is one turn of a conversation, oldest first.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the normalized request the relay accepts. It is built fresh
// for every HTTP call and not retained after the response completes.
type ChatRequest struct {
	// Provider selects the adapter.
	Provider ProviderID

	// Model is passed through to the provider unchanged.
	Model string

	// Messages is the ordered conversation, oldest first.
	Messages []ChatMessage

	// Temperature is in [0, 2].
	Temperature float64

	// MaxTokens is the output budget, always positive.
	MaxTokens int

	// TopP is the nucleus sampling probability in [0, 1].
	TopP float64

	// SystemInstructions is optional; empty means none.
	SystemInstructions string
}

// Validate checks sampling ranges, the model and message roles. It does not
// check for an empty conversation; that is reported by the normalizer as
// ErrEmptyConversation.
func (r *ChatRequest) Validate() error {
	if r.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return &ValidationError{Field: "temperature", Message: fmt.Sprintf("must be between 0 and 2, got %g", r.Temperature)}
	}
	if r.MaxTokens <= 0 {
		return &ValidationError{Field: "maxTokens", Message: fmt.Sprintf("must be positive, got %d", r.MaxTokens)}
	}
	if r.TopP < 0 || r.TopP > 1 {
		return &ValidationError{Field: "topP", Message: fmt.Sprintf("must be between 0 and 1, got %g", r.TopP)}
	}
	for i, msg := range r.Messages {
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: fmt.Sprintf("unsupported role %q", msg.Role),
			}
		}
	}
	return nil
}

// AdapterConfig is the process-lifetime configuration of one adapter. It is
// resolved once when the registry creates the adapter.
type AdapterConfig struct {
	// ID is the provider the adapter serves.
	ID ProviderID

	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string

	// APIKey is the credential. Empty means not configured.
	APIKey string

	// CredentialEnv names the environment variable the key was read from.
	// It is used in error messages only.
	CredentialEnv string

	// Timeout bounds connection setup and the wait for response headers.
	// Streaming bodies are bounded by the request context instead.
	Timeout time.Duration

	// MaxIdleConns is the pool size across hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the pool size per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration
}

// DefaultBaseURLs are the public API roots per provider.
var DefaultBaseURLs = map[ProviderID]string{
	OpenAI:     "https://api.openai.com/v1",
	Anthropic:  "https://api.anthropic.com",
	Google:     "https://generativelanguage.googleapis.com",
	Cohere:     "https://api.cohere.ai",
	XAI:        "https://api.x.ai/v1",
	DeepSeek:   "https://api.deepseek.com/v1",
	Mistral:    "https://api.mistral.ai/v1",
	Perplexity: "https://api.perplexity.ai",
}

// CredentialEnvVar returns the default environment variable carrying the
// provider's API key, e.g. "OPENAI_API_KEY".
func CredentialEnvVar(id ProviderID) string {
	return strings.ToUpper(string(id)) + "_API_KEY"
}

// WithDefaults fills zero fields with the package defaults.
func (c AdapterConfig) WithDefaults() AdapterConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURLs[c.ID]
	}
	if c.CredentialEnv == "" {
		c.CredentialEnv = CredentialEnvVar(c.ID)
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 100
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = 10
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
	return c
}
