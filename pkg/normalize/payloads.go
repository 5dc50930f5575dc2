package normalize

import "mercator-hq/playground/pkg/providers"

// NativeMessage is a role/content pair in a provider's own role vocabulary.
type NativeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionPayload is the OpenAI-compatible chat completions body used
// by openai, xai, deepseek, mistral and perplexity.
type ChatCompletionPayload struct {
	Provider    providers.ProviderID `json:"-"`
	Model       string               `json:"model"`
	Messages    []NativeMessage      `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	TopP        float64              `json:"top_p"`
	Stream      bool                 `json:"stream,omitempty"`
}

// Target implements providers.NativeRequest.
func (p *ChatCompletionPayload) Target() providers.ProviderID { return p.Provider }

// MessagesPayload is the Anthropic messages API body.
type MessagesPayload struct {
	Model       string          `json:"model"`
	System      string          `json:"system,omitempty"`
	Messages    []NativeMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	TopP        float64         `json:"top_p"`
	Stream      bool            `json:"stream"`
}

// Target implements providers.NativeRequest.
func (p *MessagesPayload) Target() providers.ProviderID { return providers.Anthropic }

// Turn is one history entry of a turn-based conversation.
type Turn struct {
	Role string
	Text string
}

// TurnPayload is the Gemini request: history plus one active prompt. It is
// translated into SDK types by the google adapter.
type TurnPayload struct {
	Model           string
	History         []Turn
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
	TopP            float64
}

// Target implements providers.NativeRequest.
func (p *TurnPayload) Target() providers.ProviderID { return providers.Google }

// CohereTurn is one chat_history entry.
type CohereTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// CohereChatPayload is the Cohere v1 chat body.
type CohereChatPayload struct {
	Model       string       `json:"model"`
	Message     string       `json:"message"`
	ChatHistory []CohereTurn `json:"chat_history,omitempty"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	P           float64      `json:"p"`
	Stream      bool         `json:"stream"`
}

// Target implements providers.NativeRequest.
func (p *CohereChatPayload) Target() providers.ProviderID { return providers.Cohere }
