package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/playground/pkg/providers"
	"mercator-hq/playground/pkg/proxy"
	"mercator-hq/playground/pkg/proxy/middleware"
	"mercator-hq/playground/pkg/proxy/types"
	"mercator-hq/playground/pkg/stream"
	"mercator-hq/playground/pkg/telemetry/logging"
)

// errHandlerPanic replaces a recovered panic on the wire.
var errHandlerPanic = errors.New("internal error while relaying the response")

// ChatHandler serves POST /api/chat: it accepts a chat request and answers
// with a normalized event stream from the selected provider.
type ChatHandler struct {
	registry stream.Resolver
	observer RelayObserver
	recorder EvidenceRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// ChatOption configures a ChatHandler.
type ChatOption func(*ChatHandler)

// WithObserver sets the relay observer, usually the metrics collector.
func WithObserver(o RelayObserver) ChatOption {
	return func(h *ChatHandler) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithRecorder sets the evidence recorder. Without one no evidence is kept.
func WithRecorder(r EvidenceRecorder) ChatOption {
	return func(h *ChatHandler) { h.recorder = r }
}

// WithLogger sets the handler's logger.
func WithLogger(logger *slog.Logger) ChatOption {
	return func(h *ChatHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock sets the time source of the stream multiplexer.
func WithClock(now func() time.Time) ChatOption {
	return func(h *ChatHandler) { h.now = now }
}

// NewChatHandler creates a chat handler resolving adapters from registry.
func NewChatHandler(registry stream.Resolver, opts ...ChatOption) *ChatHandler {
	h := &ChatHandler{
		registry: registry,
		observer: noopObserver{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
//
// Malformed bodies and wrong methods are rejected with a JSON error before
// any event is written. Everything else, including an unknown provider or
// a missing credential, is answered with a 200 event stream that ends in an
// error event.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		if err := proxy.WriteErrorResponse(w, types.NewMethodNotAllowedError(r.Method)); err != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	chatReq, err := proxy.ParseChatRequest(r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to parse request",
			"request_id", requestID,
			"error", err,
		)
		if err := proxy.WriteErrorResponse(w, proxy.HandleError(err)); err != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	req := chatReq.ToProviderRequest()
	ctx = logging.WithProvider(ctx, string(req.Provider))
	ctx = logging.WithModel(ctx, req.Model)

	h.logger.DebugContext(ctx, "processing chat request",
		"request_id", requestID,
		"provider", req.Provider,
		"model", req.Model,
		"messages", len(req.Messages),
	)

	enc := stream.EncoderFor(r.Header.Get("Accept"))
	proxy.SetStreamHeaders(w, enc.ContentType())
	w.WriteHeader(http.StatusOK)

	h.observer.StreamStarted()
	defer h.observer.StreamFinished()

	mux := stream.New(w, enc, stream.WithLogger(h.logger), stream.WithClock(h.now))
	summary := h.relay(ctx, mux, req)

	h.observer.ObserveRelay(summary)
	h.record(ctx, requestID, summary)
	h.logCompletion(ctx, requestID, summary)
}

// relay runs the multiplexer. A panic below it is turned into an error
// event so the stream still terminates properly.
func (h *ChatHandler) relay(ctx context.Context, mux *stream.Multiplexer, req *providers.ChatRequest) (summary stream.Summary) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if p == http.ErrAbortHandler {
			panic(p)
		}
		h.logger.ErrorContext(ctx, "panic during relay", "error", fmt.Sprint(p))
		if ctx.Err() == nil {
			_ = mux.Fail(errHandlerPanic)
		}
		summary = mux.Summary()
		if summary.Outcome == "" {
			summary.Outcome = stream.OutcomeCanceled
			summary.ErrorKind = providers.KindCanceled
		}
		summary.Duration = h.now().Sub(summary.StartedAt)
	}()

	return mux.Run(ctx, h.registry, req)
}

func (h *ChatHandler) record(ctx context.Context, requestID string, summary stream.Summary) {
	if h.recorder == nil {
		return
	}
	// The relay's context may already be cancelled; evidence is kept anyway.
	if _, err := h.recorder.Record(context.WithoutCancel(ctx), requestID, summary); err != nil {
		h.logger.WarnContext(ctx, "failed to record evidence",
			"request_id", requestID,
			"error", err,
		)
	}
}

func (h *ChatHandler) logCompletion(ctx context.Context, requestID string, summary stream.Summary) {
	level := slog.LevelInfo
	if summary.Outcome == stream.OutcomeError {
		level = slog.LevelWarn
	}

	attrs := []any{
		"request_id", requestID,
		"provider", summary.Provider,
		"model", summary.Model,
		"outcome", summary.Outcome,
		"content_events", summary.ContentEvents,
		"duration_ms", summary.Duration.Milliseconds(),
	}
	if summary.ContentEvents > 0 {
		attrs = append(attrs, "first_content_ms", summary.TimeToFirstContent.Milliseconds())
	}
	if summary.ErrorKind != "" {
		attrs = append(attrs, "error_kind", summary.ErrorKind)
	}
	if summary.ErrorMessage != "" {
		attrs = append(attrs, "error", summary.ErrorMessage)
	}

	h.logger.Log(ctx, level, "relay completed", attrs...)
}
