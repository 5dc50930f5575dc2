package providers

import (
	"context"
	"iter"
	"testing"
	"time"

	"mercator-hq/playground/pkg/providers"
)

// TestConfig returns an adapter configuration pointing at baseURL.
func TestConfig(id providers.ProviderID, baseURL string) providers.AdapterConfig {
	return providers.AdapterConfig{
		ID:                  id,
		BaseURL:             baseURL,
		APIKey:              "test-key",
		Timeout:             5 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestRequest returns a request with default sampling and the given messages.
func TestRequest(id providers.ProviderID, model string, messages ...providers.ChatMessage) *providers.ChatRequest {
	return &providers.ChatRequest{
		Provider:    id,
		Model:       model,
		Messages:    messages,
		Temperature: providers.DefaultTemperature,
		MaxTokens:   providers.DefaultMaxTokens,
		TopP:        providers.DefaultTopP,
	}
}

// User returns a user message.
func User(content string) providers.ChatMessage {
	return providers.ChatMessage{Role: providers.RoleUser, Content: content}
}

// Assistant returns an assistant message.
func Assistant(content string) providers.ChatMessage {
	return providers.ChatMessage{Role: providers.RoleAssistant, Content: content}
}

// System returns a system message.
func System(content string) providers.ChatMessage {
	return providers.ChatMessage{Role: providers.RoleSystem, Content: content}
}

// Collect drains seq, failing the test if it does not finish within 5s.
func Collect(t *testing.T, seq iter.Seq[providers.Event]) []providers.Event {
	t.Helper()

	done := make(chan []providers.Event, 1)
	go func() {
		var events []providers.Event
		for ev := range seq {
			events = append(events, ev)
		}
		done <- events
	}()

	select {
	case events := <-done:
		return events
	case <-time.After(5 * time.Second):
		t.Fatal("event sequence did not finish")
		return nil
	}
}

// StreamRequest normalizes req with adapter and collects the stream.
func StreamRequest(t *testing.T, adapter providers.Adapter, req *providers.ChatRequest) []providers.Event {
	t.Helper()

	native, err := adapter.Normalize(req)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return Collect(t, adapter.Stream(context.Background(), native))
}

// Text concatenates the content of all Content events.
func Text(events []providers.Event) string {
	var s string
	for _, ev := range events {
		if ev.Type == providers.EventContent {
			s += ev.Content
		}
	}
	return s
}

// AssertWellFormed checks that events hold zero or more Content events
// followed by exactly one terminal event, and returns the terminal event.
func AssertWellFormed(t *testing.T, events []providers.Event) providers.Event {
	t.Helper()

	if len(events) == 0 {
		t.Fatal("expected at least one event")
	}
	for i, ev := range events[:len(events)-1] {
		if ev.Type != providers.EventContent {
			t.Fatalf("event %d: expected content before terminal, got %q", i, ev.Type)
		}
	}
	last := events[len(events)-1]
	if !last.IsTerminal() {
		t.Fatalf("last event: expected end or error, got %q", last.Type)
	}
	return last
}
