package generic

import (
	"context"
	"errors"
	"strings"
	"testing"

	testproviders "mercator-hq/playground/internal/providers"
	"mercator-hq/playground/pkg/normalize"
	"mercator-hq/playground/pkg/providers"
)

func newTestProvider(t *testing.T, id providers.ProviderID, baseURL string) *Provider {
	t.Helper()

	p, err := NewProvider(testproviders.TestConfig(id, baseURL))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestNewProvider_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config providers.AdapterConfig
		check  func(error) bool
	}{
		{
			name:   "missing id",
			config: providers.AdapterConfig{APIKey: "k", BaseURL: "http://x"},
			check: func(err error) bool {
				var e *providers.ConfigError
				return errors.As(err, &e)
			},
		},
		{
			name:   "missing key",
			config: providers.AdapterConfig{ID: providers.DeepSeek},
			check: func(err error) bool {
				var e *providers.NotConfiguredError
				return errors.As(err, &e) && strings.Contains(err.Error(), "DEEPSEEK_API_KEY")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestStream_SingleContentThenEnd(t *testing.T) {
	mock := testproviders.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testproviders.MockResponse{
		Body: testproviders.ChatCompletion("The whole answer."),
	})

	p := newTestProvider(t, providers.Mistral, mock.URL()+"/v1")
	req := testproviders.TestRequest(providers.Mistral, "mistral-large-latest", testproviders.User("Y"))
	req.SystemInstructions = "X"

	events := testproviders.StreamRequest(t, p, req)

	if len(events) != 2 {
		t.Fatalf("expected content then end, got %+v", events)
	}
	if events[0].Type != providers.EventContent || events[0].Content != "The whole answer." {
		t.Errorf("unexpected first event %+v", events[0])
	}
	if events[1].Type != providers.EventEnd {
		t.Errorf("unexpected last event %+v", events[1])
	}

	recorded, _ := mock.LastRequest()
	if recorded.Header.Get("Authorization") != "Bearer test-key" {
		t.Errorf("unexpected Authorization %q", recorded.Header.Get("Authorization"))
	}

	var body struct {
		Stream   *bool `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := mock.DecodeLastBody(&body); err != nil {
		t.Fatal(err)
	}
	if body.Stream != nil {
		t.Errorf("expected no stream field, got %v", *body.Stream)
	}
	if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[0].Content != "X" {
		t.Errorf("unexpected messages %+v", body.Messages)
	}
}

func TestStream_EmptyContent(t *testing.T) {
	mock := testproviders.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/chat/completions", testproviders.MockResponse{
		Body: testproviders.ChatCompletion(""),
	})

	p := newTestProvider(t, providers.XAI, mock.URL())
	events := testproviders.StreamRequest(t, p, testproviders.TestRequest(providers.XAI, "grok-2", testproviders.User("hi")))

	if len(events) != 2 || events[0].Content != "No response generated" {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestStream_Failures(t *testing.T) {
	tests := []struct {
		name        string
		response    testproviders.MockResponse
		wantMessage string
	}{
		{
			name:        "no choices",
			response:    testproviders.MockResponse{Body: map[string]any{"choices": []any{}}},
			wantMessage: "no choices",
		},
		{
			name:        "not json",
			response:    testproviders.MockResponse{Body: "<html>bad gateway</html>"},
			wantMessage: "malformed frame",
		},
		{
			name:        "server error",
			response:    testproviders.MockResponse{StatusCode: 500, Body: `{"error":{"message":"upstream exploded"}}`},
			wantMessage: "upstream exploded",
		},
		{
			name:        "unauthorized",
			response:    testproviders.MockResponse{StatusCode: 401, Body: `{"error":"bad key"}`},
			wantMessage: "authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testproviders.NewMockServer()
			defer mock.Close()
			mock.SetResponse("/chat/completions", tt.response)

			p := newTestProvider(t, providers.Perplexity, mock.URL())
			events := testproviders.StreamRequest(t, p, testproviders.TestRequest(providers.Perplexity, "sonar", testproviders.User("hi")))

			if len(events) != 1 || events[0].Type != providers.EventError {
				t.Fatalf("expected a single error event, got %+v", events)
			}
			if !strings.Contains(events[0].Message, tt.wantMessage) {
				t.Errorf("message %q does not contain %q", events[0].Message, tt.wantMessage)
			}
			if mock.RequestCount() != 1 {
				t.Errorf("expected exactly one attempt, got %d", mock.RequestCount())
			}
		})
	}
}

func TestStream_CancelledEmitsNothing(t *testing.T) {
	mock := testproviders.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testproviders.MockResponse{Hold: true})

	p := newTestProvider(t, providers.DeepSeek, mock.URL())
	native, err := p.Normalize(testproviders.TestRequest(providers.DeepSeek, "deepseek-chat", testproviders.User("hi")))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	seq := p.Stream(ctx, native)
	cancel()

	if events := testproviders.Collect(t, seq); len(events) != 0 {
		t.Errorf("expected no events after cancellation, got %+v", events)
	}
}

func TestStream_RejectsOtherProvidersPayload(t *testing.T) {
	p := newTestProvider(t, providers.Mistral, "http://unused")

	native, err := normalize.ChatCompletion(providers.XAI, testproviders.TestRequest(providers.XAI, "grok-2", testproviders.User("hi")))
	if err != nil {
		t.Fatal(err)
	}

	events := testproviders.Collect(t, p.Stream(context.Background(), native))
	if len(events) != 1 || events[0].Type != providers.EventError {
		t.Errorf("expected one error event, got %+v", events)
	}
}
