package handlers

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	testproviders "mercator-hq/playground/internal/providers"
	"mercator-hq/playground/pkg/providerfactory"
	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/proxy/middleware"
	"mercator-hq/playground/pkg/proxy/types"
	"mercator-hq/playground/pkg/stream"
)

type nativeStub struct{}

func (nativeStub) Target() providers.ProviderID { return providers.OpenAI }

// scriptedAdapter replays a fixed event list.
type scriptedAdapter struct {
	events []providers.Event
	panics bool

	mu  sync.Mutex
	got *providers.ChatRequest
}

func (a *scriptedAdapter) ID() providers.ProviderID { return providers.OpenAI }

func (a *scriptedAdapter) Normalize(req *providers.ChatRequest) (providers.NativeRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.got = req
	a.mu.Unlock()
	return nativeStub{}, nil
}

func (a *scriptedAdapter) Stream(ctx context.Context, _ providers.NativeRequest) iter.Seq[providers.Event] {
	return func(yield func(providers.Event) bool) {
		for _, ev := range a.events {
			if !yield(ev) {
				return
			}
		}
		if a.panics {
			panic("adapter bug")
		}
	}
}

func (a *scriptedAdapter) request() *providers.ChatRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.got
}

type resolverFunc func(string) (providers.Adapter, error)

func (f resolverFunc) Get(name string) (providers.Adapter, error) { return f(name) }

func static(a providers.Adapter) stream.Resolver {
	return resolverFunc(func(string) (providers.Adapter, error) { return a, nil })
}

type recordingObserver struct {
	started, finished int
	summaries         []stream.Summary
}

func (o *recordingObserver) StreamStarted()                { o.started++ }
func (o *recordingObserver) StreamFinished()               { o.finished++ }
func (o *recordingObserver) ObserveRelay(s stream.Summary) { o.summaries = append(o.summaries, s) }

type recordingRecorder struct {
	requestIDs []string
	summaries  []stream.Summary
	ctxErr     error
}

func (r *recordingRecorder) Record(ctx context.Context, requestID string, s stream.Summary) (string, error) {
	r.requestIDs = append(r.requestIDs, requestID)
	r.summaries = append(r.summaries, s)
	r.ctxErr = ctx.Err()
	return "ev-1", nil
}

const helloBody = `{"provider":"openai","model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`

func helloAdapter() *scriptedAdapter {
	return &scriptedAdapter{events: []providers.Event{
		providers.ContentEvent("Hel"),
		providers.ContentEvent("lo"),
		providers.EndEvent(),
	}}
}

func postChat(t *testing.T, h http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSSE(t *testing.T, body string) []providers.Event {
	t.Helper()
	var events []providers.Event
	for _, frame := range strings.Split(strings.TrimSpace(body), "\n\n") {
		data, ok := strings.CutPrefix(frame, "data: ")
		if !ok {
			t.Fatalf("unexpected frame %q", frame)
		}
		var ev providers.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("decode frame %q: %v", data, err)
		}
		events = append(events, ev)
	}
	return events
}

func eventTypes(events []providers.Event) string {
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = string(ev.Type)
	}
	return strings.Join(names, ",")
}

func TestChatHandler_StreamsSSE(t *testing.T) {
	h := NewChatHandler(static(helloAdapter()))

	rec := postChat(t, h, helloBody, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q", cc)
	}
	if !rec.Flushed {
		t.Error("expected frames to be flushed")
	}

	events := decodeSSE(t, rec.Body.String())
	if got := eventTypes(events); got != "start,content,content,end" {
		t.Fatalf("events = %s", got)
	}
	if events[1].Content+events[2].Content != "Hello" {
		t.Errorf("content = %q", events[1].Content+events[2].Content)
	}
}

func TestChatHandler_NDJSON(t *testing.T) {
	h := NewChatHandler(static(helloAdapter()))

	rec := postChat(t, h, helloBody, map[string]string{"Accept": "application/x-ndjson"})

	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("Content-Type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	want := []string{
		`{"type":"start"}`,
		`{"type":"content","content":"Hel"}`,
		`{"type":"content","content":"lo"}`,
		`{"type":"end"}`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %s, want %s", i, lines[i], want[i])
		}
	}
}

func TestChatHandler_SamplingDefaults(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTemp  float64
		wantMax   int
		wantTopP  float64
		wantSys   string
		wantCount int
	}{
		{
			name:      "omitted fields use defaults",
			body:      helloBody,
			wantTemp:  providers.DefaultTemperature,
			wantMax:   providers.DefaultMaxTokens,
			wantTopP:  providers.DefaultTopP,
			wantCount: 1,
		},
		{
			name: "explicit values kept",
			body: `{"provider":"openai","model":"gpt-4o","temperature":0,"maxTokens":64,"topP":0.5,
				"systemInstructions":"be brief",
				"messages":[{"role":"system","content":"s"},{"role":"user","content":"hi"}]}`,
			wantTemp:  0,
			wantMax:   64,
			wantTopP:  0.5,
			wantSys:   "be brief",
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := helloAdapter()
			postChat(t, NewChatHandler(static(adapter)), tt.body, nil)

			got := adapter.request()
			if got == nil {
				t.Fatal("adapter was not called")
			}
			if got.Temperature != tt.wantTemp || got.MaxTokens != tt.wantMax || got.TopP != tt.wantTopP {
				t.Errorf("sampling = %v/%d/%v, want %v/%d/%v",
					got.Temperature, got.MaxTokens, got.TopP, tt.wantTemp, tt.wantMax, tt.wantTopP)
			}
			if got.SystemInstructions != tt.wantSys {
				t.Errorf("system instructions = %q", got.SystemInstructions)
			}
			if len(got.Messages) != tt.wantCount {
				t.Errorf("messages = %d, want %d", len(got.Messages), tt.wantCount)
			}
		})
	}
}

func TestChatHandler_RejectedBeforeStream(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantType   string
	}{
		{name: "wrong method", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed, wantType: types.ErrorTypeMethodNotAllowed},
		{name: "invalid json", method: http.MethodPost, body: `{"provider":`, wantStatus: http.StatusBadRequest, wantType: types.ErrorTypeInvalidRequest},
		{name: "empty body", method: http.MethodPost, body: ``, wantStatus: http.StatusBadRequest, wantType: types.ErrorTypeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := helloAdapter()
			observer := &recordingObserver{}
			h := NewChatHandler(static(adapter), WithObserver(observer))

			req := httptest.NewRequest(tt.method, "/api/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var resp types.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Error.Type != tt.wantType {
				t.Errorf("error type = %q, want %q", resp.Error.Type, tt.wantType)
			}
			if adapter.request() != nil {
				t.Error("adapter should not be called")
			}
			if observer.started != 0 {
				t.Error("no stream should have started")
			}
		})
	}
}

func TestChatHandler_FailuresAreErrorEvents(t *testing.T) {
	registry := providerfactory.NewRegistry(nil,
		providerfactory.WithLookupEnv(func(string) (string, bool) { return "", false }),
	)

	tests := []struct {
		name        string
		resolver    stream.Resolver
		body        string
		wantMessage string
		wantKind    string
	}{
		{
			name:        "unsupported provider",
			resolver:    registry,
			body:        `{"provider":"foo","model":"m","messages":[{"role":"user","content":"hi"}]}`,
			wantMessage: `unsupported provider "foo"`,
			wantKind:    providers.KindUnsupportedProvider,
		},
		{
			name:        "missing credential",
			resolver:    registry,
			body:        `{"provider":"cohere","model":"command-r","messages":[{"role":"user","content":"hi"}]}`,
			wantMessage: `provider "cohere" is not configured`,
			wantKind:    providers.KindNotConfigured,
		},
		{
			name:        "out of range temperature",
			resolver:    static(helloAdapter()),
			body:        `{"provider":"openai","model":"gpt-4o","temperature":3,"messages":[{"role":"user","content":"hi"}]}`,
			wantMessage: "invalid temperature",
			wantKind:    providers.KindValidation,
		},
		{
			name:        "unknown role",
			resolver:    static(helloAdapter()),
			body:        `{"provider":"openai","model":"gpt-4o","messages":[{"role":"tool","content":"hi"}]}`,
			wantMessage: "invalid messages[0].role",
			wantKind:    providers.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := &recordingObserver{}
			h := NewChatHandler(tt.resolver, WithObserver(observer))

			rec := postChat(t, h, tt.body, nil)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			events := decodeSSE(t, rec.Body.String())
			if got := eventTypes(events); got != "start,error" {
				t.Fatalf("events = %s", got)
			}
			if !strings.Contains(events[1].Message, tt.wantMessage) {
				t.Errorf("message = %q, want it to contain %q", events[1].Message, tt.wantMessage)
			}
			if len(observer.summaries) != 1 || observer.summaries[0].ErrorKind != tt.wantKind {
				t.Errorf("summaries = %+v, want kind %q", observer.summaries, tt.wantKind)
			}
		})
	}
}

func TestChatHandler_GenericProvider(t *testing.T) {
	mock := testproviders.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/chat/completions", testproviders.MockResponse{
		Body: testproviders.ChatCompletion("Hello from xai"),
	})

	registry := providerfactory.NewRegistry(map[providers.ProviderID]providers.AdapterConfig{
		providers.XAI: testproviders.TestConfig(providers.XAI, mock.URL()),
	})
	defer registry.Close()

	body := `{"provider":"xai","model":"grok-2","messages":[{"role":"user","content":"hi"}]}`
	rec := postChat(t, NewChatHandler(registry), body, nil)

	events := decodeSSE(t, rec.Body.String())
	if got := eventTypes(events); got != "start,content,end" {
		t.Fatalf("events = %s", got)
	}
	if events[1].Content != "Hello from xai" {
		t.Errorf("content = %q", events[1].Content)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("provider calls = %d, want 1", mock.RequestCount())
	}
}

func TestChatHandler_PanicEndsStream(t *testing.T) {
	adapter := &scriptedAdapter{
		events: []providers.Event{providers.ContentEvent("partial")},
		panics: true,
	}
	observer := &recordingObserver{}
	h := NewChatHandler(static(adapter), WithObserver(observer))

	rec := postChat(t, h, helloBody, nil)

	events := decodeSSE(t, rec.Body.String())
	if got := eventTypes(events); got != "start,content,error" {
		t.Fatalf("events = %s", got)
	}
	if events[2].Message != errHandlerPanic.Error() {
		t.Errorf("message = %q", events[2].Message)
	}
	if observer.finished != 1 || len(observer.summaries) != 1 {
		t.Fatalf("observer = %+v", observer)
	}
	if s := observer.summaries[0]; s.Outcome != stream.OutcomeError || s.ContentEvents != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestChatHandler_CanceledRequest(t *testing.T) {
	observer := &recordingObserver{}
	h := NewChatHandler(static(helloAdapter()), WithObserver(observer))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(helloBody)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	events := decodeSSE(t, rec.Body.String())
	if got := eventTypes(events); got != "start" {
		t.Errorf("events = %s, want only start", got)
	}
	if len(observer.summaries) != 1 || observer.summaries[0].Outcome != stream.OutcomeCanceled {
		t.Errorf("summaries = %+v", observer.summaries)
	}
}

func TestChatHandler_ObserverAndRecorder(t *testing.T) {
	observer := &recordingObserver{}
	recorder := &recordingRecorder{}
	h := middleware.RequestIDMiddleware(NewChatHandler(static(helloAdapter()),
		WithObserver(observer),
		WithRecorder(recorder),
	))

	rec := postChat(t, h, helloBody, map[string]string{"X-Request-ID": "req-42"})

	if rec.Header().Get("X-Request-ID") != "req-42" {
		t.Errorf("X-Request-ID = %q", rec.Header().Get("X-Request-ID"))
	}
	if observer.started != 1 || observer.finished != 1 {
		t.Errorf("started/finished = %d/%d", observer.started, observer.finished)
	}
	if len(recorder.summaries) != 1 {
		t.Fatalf("recorded %d summaries, want 1", len(recorder.summaries))
	}
	if recorder.requestIDs[0] != "req-42" {
		t.Errorf("request id = %q", recorder.requestIDs[0])
	}
	s := recorder.summaries[0]
	if s.Provider != providers.OpenAI || s.Model != "gpt-4o" || s.MessageCount != 1 {
		t.Errorf("summary request fields = %+v", s)
	}
	if s.Outcome != stream.OutcomeEnd || s.ContentEvents != 2 || s.ContentBytes != 5 {
		t.Errorf("summary outcome fields = %+v", s)
	}
}

func TestChatHandler_RecorderGetsLiveContext(t *testing.T) {
	recorder := &recordingRecorder{}
	h := NewChatHandler(static(helloAdapter()), WithRecorder(recorder))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(helloBody)).WithContext(ctx)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(recorder.summaries) != 1 {
		t.Fatalf("recorded %d summaries, want 1", len(recorder.summaries))
	}
	if recorder.ctxErr != nil {
		t.Errorf("recorder context error = %v, want nil", recorder.ctxErr)
	}
}
