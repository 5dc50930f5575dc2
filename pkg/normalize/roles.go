package normalize

import "mercator-hq/playground/pkg/providers"

// RoleTable maps canonical roles to one provider's vocabulary and back.
type RoleTable struct {
	toNative   map[string]string
	fromNative map[string]string
}

func newRoleTable(pairs map[string]string) RoleTable {
	t := RoleTable{
		toNative:   make(map[string]string, len(pairs)),
		fromNative: make(map[string]string, len(pairs)),
	}
	for canonical, native := range pairs {
		t.toNative[canonical] = native
		t.fromNative[native] = canonical
	}
	return t
}

// Native returns the provider's label for a canonical role.
func (t RoleTable) Native(role string) (string, bool) {
	native, ok := t.toNative[role]
	return native, ok
}

// Canonical returns the canonical role for a provider label.
func (t RoleTable) Canonical(native string) (string, bool) {
	role, ok := t.fromNative[native]
	return role, ok
}

var (
	chatCompletionRoles = newRoleTable(map[string]string{
		providers.RoleSystem:    "system",
		providers.RoleUser:      "user",
		providers.RoleAssistant: "assistant",
	})

	// Anthropic carries system text in a dedicated field.
	anthropicRoles = newRoleTable(map[string]string{
		providers.RoleUser:      "user",
		providers.RoleAssistant: "assistant",
	})

	// Gemini history has no system turn.
	googleRoles = newRoleTable(map[string]string{
		providers.RoleUser:      "user",
		providers.RoleAssistant: "model",
	})

	cohereRoles = newRoleTable(map[string]string{
		providers.RoleSystem:    "SYSTEM",
		providers.RoleUser:      "USER",
		providers.RoleAssistant: "CHATBOT",
	})

	roleTables = map[providers.ProviderID]RoleTable{
		providers.OpenAI:     chatCompletionRoles,
		providers.XAI:        chatCompletionRoles,
		providers.DeepSeek:   chatCompletionRoles,
		providers.Mistral:    chatCompletionRoles,
		providers.Perplexity: chatCompletionRoles,
		providers.Anthropic:  anthropicRoles,
		providers.Google:     googleRoles,
		providers.Cohere:     cohereRoles,
	}
)

// Roles returns the role table for a provider.
func Roles(id providers.ProviderID) (RoleTable, bool) {
	t, ok := roleTables[id]
	return t, ok
}
