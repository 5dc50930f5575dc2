package normalize

import (
	"fmt"
	"strings"

	"mercator-hq/playground/pkg/providers"
)

// SystemPlacement says where a provider expects system instructions.
type SystemPlacement int

const (
	// DedicatedField puts instructions in a field next to the message list.
	DedicatedField SystemPlacement = iota

	// PrependMessage injects instructions as the first "system" message.
	PrependMessage

	// PromptPrefix prefixes the active prompt, separated by a blank line.
	PromptPrefix
)

// String implements fmt.Stringer.
func (p SystemPlacement) String() string {
	switch p {
	case DedicatedField:
		return "dedicated_field"
	case PrependMessage:
		return "prepend_message"
	case PromptPrefix:
		return "prompt_prefix"
	default:
		return fmt.Sprintf("SystemPlacement(%d)", int(p))
	}
}

// Placement returns the system placement rule for a provider.
func Placement(id providers.ProviderID) SystemPlacement {
	switch id {
	case providers.Anthropic:
		return DedicatedField
	case providers.Google, providers.Cohere:
		return PromptPrefix
	default:
		return PrependMessage
	}
}

// Sampling ranges that differ from the canonical ones.
const (
	anthropicMaxTemperature = 1.0
	cohereMinP              = 0.01
	cohereMaxP              = 0.99
)

const blankLine = "\n\n"

// For builds the native payload for the request's provider.
func For(req *providers.ChatRequest) (providers.NativeRequest, error) {
	switch req.Provider {
	case providers.Anthropic:
		return Messages(req)
	case providers.Google:
		return Turns(req)
	case providers.Cohere:
		return CohereChat(req)
	case providers.OpenAI, providers.XAI, providers.DeepSeek, providers.Mistral, providers.Perplexity:
		return ChatCompletion(req.Provider, req)
	default:
		return nil, &providers.UnsupportedProviderError{Provider: string(req.Provider)}
	}
}

// conversation is a request split into system text and dialogue turns.
type conversation struct {
	systems []string
	turns   []providers.ChatMessage
}

// split validates req and separates in-list system messages from turns.
func split(req *providers.ChatRequest) (*conversation, error) {
	if len(req.Messages) == 0 {
		return nil, providers.ErrEmptyConversation
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &conversation{}
	for _, msg := range req.Messages {
		if msg.Role == providers.RoleSystem {
			c.systems = append(c.systems, msg.Content)
			continue
		}
		c.turns = append(c.turns, msg)
	}
	if len(c.turns) == 0 {
		return nil, providers.ErrEmptyConversation
	}
	return c, nil
}

// instructions joins explicit instructions and in-list system messages.
func (c *conversation) instructions(explicit string) string {
	parts := make([]string, 0, len(c.systems)+1)
	if explicit != "" {
		parts = append(parts, explicit)
	}
	for _, s := range c.systems {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, blankLine)
}

// history returns all turns but the last, and the last turn's content.
func (c *conversation) history() ([]providers.ChatMessage, string) {
	n := len(c.turns)
	return c.turns[:n-1], c.turns[n-1].Content
}

func mapRole(table RoleTable, id providers.ProviderID, role string) (string, error) {
	native, ok := table.Native(role)
	if !ok {
		return "", &providers.ValidationError{Field: "role", Message: fmt.Sprintf("role %q has no %s equivalent", role, id)}
	}
	return native, nil
}

// ChatCompletion builds an OpenAI-compatible body. System instructions are
// prepended as a "system" message; system messages already in the list keep
// their position.
func ChatCompletion(id providers.ProviderID, req *providers.ChatRequest) (*ChatCompletionPayload, error) {
	if _, err := split(req); err != nil {
		return nil, err
	}

	messages := make([]NativeMessage, 0, len(req.Messages)+1)
	if req.SystemInstructions != "" {
		messages = append(messages, NativeMessage{Role: "system", Content: req.SystemInstructions})
	}
	for _, msg := range req.Messages {
		role, err := mapRole(chatCompletionRoles, id, msg.Role)
		if err != nil {
			return nil, err
		}
		messages = append(messages, NativeMessage{Role: role, Content: msg.Content})
	}

	return &ChatCompletionPayload{
		Provider:    id,
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}, nil
}

// Messages builds an Anthropic body. The system field is the explicit
// instructions when set, otherwise the in-list system messages; system
// messages never appear in the message list.
func Messages(req *providers.ChatRequest) (*MessagesPayload, error) {
	c, err := split(req)
	if err != nil {
		return nil, err
	}

	system := req.SystemInstructions
	if system == "" {
		system = c.instructions("")
	}

	messages := make([]NativeMessage, 0, len(c.turns))
	for _, msg := range c.turns {
		role, err := mapRole(anthropicRoles, providers.Anthropic, msg.Role)
		if err != nil {
			return nil, err
		}
		messages = append(messages, NativeMessage{Role: role, Content: msg.Content})
	}

	return &MessagesPayload{
		Model:       req.Model,
		System:      system,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: min(req.Temperature, anthropicMaxTemperature),
		TopP:        req.TopP,
		Stream:      true,
	}, nil
}

// Turns builds a Gemini history/prompt payload.
func Turns(req *providers.ChatRequest) (*TurnPayload, error) {
	c, err := split(req)
	if err != nil {
		return nil, err
	}

	past, prompt := c.history()
	history := make([]Turn, 0, len(past))
	for _, msg := range past {
		role, err := mapRole(googleRoles, providers.Google, msg.Role)
		if err != nil {
			return nil, err
		}
		history = append(history, Turn{Role: role, Text: msg.Content})
	}

	return &TurnPayload{
		Model:           req.Model,
		History:         history,
		Prompt:          withPrefix(c.instructions(req.SystemInstructions), prompt),
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
		TopP:            req.TopP,
	}, nil
}

// CohereChat builds a Cohere v1 chat body.
func CohereChat(req *providers.ChatRequest) (*CohereChatPayload, error) {
	c, err := split(req)
	if err != nil {
		return nil, err
	}

	past, prompt := c.history()
	history := make([]CohereTurn, 0, len(past))
	for _, msg := range past {
		role, err := mapRole(cohereRoles, providers.Cohere, msg.Role)
		if err != nil {
			return nil, err
		}
		history = append(history, CohereTurn{Role: role, Message: msg.Content})
	}

	return &CohereChatPayload{
		Model:       req.Model,
		Message:     withPrefix(c.instructions(req.SystemInstructions), prompt),
		ChatHistory: history,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		P:           min(max(req.TopP, cohereMinP), cohereMaxP),
		Stream:      true,
	}, nil
}

func withPrefix(prefix, prompt string) string {
	if prefix == "" {
		return prompt
	}
	return prefix + blankLine + prompt
}
