package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a mock HTTP server for testing provider adapters.
// It simulates provider API responses including errors and streaming.
type MockServer struct {
	server    *httptest.Server
	responses map[string]MockResponse
	requests  []RecordedRequest
	canceled  chan struct{}
	cancelMu  sync.Once
	mu        sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string

	// Frames are written verbatim, one flush per frame. When set, Body is ignored.
	Frames []string

	// FrameDelay is the pause between frames.
	FrameDelay time.Duration

	// Hold keeps the connection open after the last frame until the client
	// goes away.
	Hold bool
}

// RecordedRequest is a request received by the mock server.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
		canceled:  make(chan struct{}),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a mock response for a specific endpoint.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// RequestCount returns the number of requests received.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.requests)
}

// LastRequest returns the most recent request, or false if none arrived.
func (ms *MockServer) LastRequest() (RecordedRequest, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if len(ms.requests) == 0 {
		return RecordedRequest{}, false
	}
	return ms.requests[len(ms.requests)-1], true
}

// DecodeLastBody unmarshals the most recent request body into v.
func (ms *MockServer) DecodeLastBody(v any) error {
	req, ok := ms.LastRequest()
	if !ok {
		return fmt.Errorf("no request received")
	}
	return json.Unmarshal(req.Body, v)
}

// Canceled is closed once a held stream observes the client disconnecting.
func (ms *MockServer) Canceled() <-chan struct{} {
	return ms.canceled
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.Frames) > 0 || response.Hold {
		ms.handleStream(w, r, response)
		return
	}

	status := response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (ms *MockServer) handleStream(w http.ResponseWriter, r *http.Request, response MockResponse) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/event-stream")
	}
	w.Header().Set("Cache-Control", "no-cache")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for _, frame := range response.Frames {
		if _, err := io.WriteString(w, frame); err != nil {
			return
		}
		flusher.Flush()
		if response.FrameDelay > 0 {
			time.Sleep(response.FrameDelay)
		}
	}

	if response.Hold {
		<-r.Context().Done()
		ms.cancelMu.Do(func() { close(ms.canceled) })
	}
}

// SSEData formats one "data:" frame.
func SSEData(data string) string {
	return "data: " + data + "\n\n"
}

// SSEEvent formats one named event frame.
func SSEEvent(event, data string) string {
	return "event: " + event + "\ndata: " + data + "\n\n"
}

// MustJSON marshals v or panics; for fixtures only.
func MustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// OpenAIChunk returns a chat.completion.chunk frame payload.
func OpenAIChunk(index int, delta string, finishReason string) string {
	choice := map[string]any{
		"index": index,
		"delta": map[string]any{"content": delta},
	}
	if finishReason != "" {
		choice["finish_reason"] = finishReason
	}
	return MustJSON(map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []any{choice},
	})
}

// ChatCompletion returns a blocking chat.completion response body.
func ChatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []any{
			map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

// AnthropicTextDelta returns a content_block_delta frame carrying text.
func AnthropicTextDelta(text string) string {
	return SSEEvent("content_block_delta", MustJSON(map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]any{"type": "text_delta", "text": text},
	}))
}

// AnthropicStream returns a complete Anthropic event sequence for texts.
func AnthropicStream(texts ...string) []string {
	frames := []string{
		SSEEvent("message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[]}}`),
		SSEEvent("content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`),
		SSEEvent("ping", `{"type":"ping"}`),
	}
	for _, text := range texts {
		frames = append(frames, AnthropicTextDelta(text))
	}
	return append(frames,
		SSEEvent("content_block_stop", `{"type":"content_block_stop","index":0}`),
		SSEEvent("message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`),
		SSEEvent("message_stop", `{"type":"message_stop"}`),
	)
}

// CohereEvent returns one newline-delimited Cohere stream event.
func CohereEvent(fields map[string]any) string {
	return MustJSON(fields) + "\n"
}

// CohereStream returns a complete Cohere event sequence for texts.
func CohereStream(texts ...string) []string {
	frames := []string{CohereEvent(map[string]any{"is_finished": false, "event_type": "stream-start", "generation_id": "gen-1"})}
	for _, text := range texts {
		frames = append(frames, CohereEvent(map[string]any{"is_finished": false, "event_type": "text-generation", "text": text}))
	}
	return append(frames, CohereEvent(map[string]any{
		"is_finished":   true,
		"event_type":    "stream-end",
		"finish_reason": "COMPLETE",
		"response":      map[string]any{"text": "ignored"},
	}))
}
