// Package normalize converts a providers.ChatRequest into each provider's
// native request body.
//
// Three rules differ per provider and are kept in explicit tables here:
//
//   - System placement: a dedicated field (anthropic), a prepended "system"
//     message (OpenAI-compatible APIs), or a prefix on the active prompt
//     separated by a blank line (google, cohere).
//   - Role vocabulary: see Roles.
//   - History split: turn-based APIs (google, cohere) get every turn but the
//     last as history and the last turn's content as the prompt.
//
// Sampling parameter names and ranges are also provider-specific; this is
// the only package that knows them. All functions fail with
// providers.ErrEmptyConversation when there is nothing to send, before any
// network call is made.
package normalize
