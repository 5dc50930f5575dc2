package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/playground/pkg/providers"
)

// ErrTerminated is returned for writes after the terminal event.
var ErrTerminated = errors.New("stream already terminated")

var errUnexpectedEnd = errors.New("provider stream ended unexpectedly")

// State is the multiplexer's position in the outbound protocol.
type State int

const (
	Idle State = iota
	Started
	Streaming
	Terminated
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Started:
		return "started"
	case Streaming:
		return "streaming"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome labels how a relay finished.
const (
	OutcomeEnd      = "end"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Summary describes one finished relay.
type Summary struct {
	Provider      providers.ProviderID
	Model         string
	MessageCount  int
	Outcome       string
	ErrorKind     string
	ErrorMessage  string
	ContentEvents int
	ContentBytes  int

	StartedAt          time.Time
	TimeToFirstContent time.Duration
	Duration           time.Duration
}

// Resolver supplies the adapter for a provider identifier.
type Resolver interface {
	Get(name string) (providers.Adapter, error)
}

// Multiplexer writes one well-formed event stream to w.
//
// A Multiplexer serves a single request and is not safe for concurrent use.
type Multiplexer struct {
	w       io.Writer
	flusher http.Flusher
	enc     Encoder
	state   State
	now     func() time.Time
	logger  *slog.Logger

	summary Summary
}

// Option configures a Multiplexer.
type Option func(*Multiplexer)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Multiplexer) { m.now = now }
}

// WithLogger sets the logger used for dropped writes.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Multiplexer) { m.logger = logger }
}

// New creates a Multiplexer writing to w. If w is an http.Flusher every
// frame is flushed as soon as it is written.
func New(w io.Writer, enc Encoder, opts ...Option) *Multiplexer {
	m := &Multiplexer{
		w:      w,
		enc:    enc,
		now:    time.Now,
		logger: slog.Default(),
	}
	if f, ok := w.(http.Flusher); ok {
		m.flusher = f
	}
	for _, opt := range opts {
		opt(m)
	}
	m.summary.StartedAt = m.now()
	return m
}

// State returns the current state.
func (m *Multiplexer) State() State {
	return m.state
}

// Summary returns the relay summary so far.
func (m *Multiplexer) Summary() Summary {
	return m.summary
}

// Start writes the Start event. It is only legal from Idle.
func (m *Multiplexer) Start() error {
	if m.state != Idle {
		return fmt.Errorf("start in state %s", m.state)
	}
	if err := m.write(providers.StartEvent()); err != nil {
		return err
	}
	m.state = Started
	return nil
}

// Fail terminates the stream with an Error event, writing Start first if it
// has not been written yet.
func (m *Multiplexer) Fail(err error) error {
	if m.state == Terminated {
		return ErrTerminated
	}
	if m.state == Idle {
		if startErr := m.Start(); startErr != nil {
			return startErr
		}
	}
	return m.terminate(providers.ErrorEvent(err))
}

// Relay pulls seq until a terminal event, cancellation of ctx, or a failed
// write. If seq ends without a terminal event while ctx is still live, an
// Error is synthesized. After ctx is done nothing more is written.
func (m *Multiplexer) Relay(ctx context.Context, seq iter.Seq[providers.Event]) Summary {
	if m.state == Idle {
		if err := m.Start(); err != nil {
			m.cancelled()
			return m.finish()
		}
	}

	for ev := range seq {
		if ctx.Err() != nil {
			break
		}

		switch ev.Type {
		case providers.EventContent:
			if err := m.content(ev); err != nil {
				m.cancelled()
				return m.finish()
			}
		case providers.EventEnd, providers.EventError:
			if err := m.terminate(ev); err != nil {
				m.cancelled()
			}
			return m.finish()
		default:
			m.logger.DebugContext(ctx, "dropping adapter event", "type", ev.Type)
		}
	}

	if m.state != Terminated {
		if ctx.Err() != nil {
			m.cancelled()
		} else if err := m.terminate(providers.ErrorEvent(errUnexpectedEnd)); err != nil {
			m.cancelled()
		}
	}
	return m.finish()
}

// Run serves req end to end: Start, adapter lookup, normalization, relay.
// Failures before the adapter stream opens are reported as Error events.
func (m *Multiplexer) Run(ctx context.Context, resolver Resolver, req *providers.ChatRequest) Summary {
	m.summary.Provider = req.Provider
	m.summary.Model = req.Model
	m.summary.MessageCount = len(req.Messages)

	if err := m.Start(); err != nil {
		m.cancelled()
		return m.finish()
	}

	adapter, err := resolver.Get(string(req.Provider))
	if err != nil {
		_ = m.Fail(err)
		return m.finish()
	}

	native, err := adapter.Normalize(req)
	if err != nil {
		_ = m.Fail(err)
		return m.finish()
	}

	return m.Relay(ctx, adapter.Stream(ctx, native))
}

func (m *Multiplexer) content(ev providers.Event) error {
	if m.state == Terminated {
		return ErrTerminated
	}
	if err := m.write(ev); err != nil {
		return err
	}
	if m.summary.ContentEvents == 0 {
		m.summary.TimeToFirstContent = m.now().Sub(m.summary.StartedAt)
	}
	m.summary.ContentEvents++
	m.summary.ContentBytes += len(ev.Content)
	m.state = Streaming
	return nil
}

// terminate writes the terminal event.
func (m *Multiplexer) terminate(ev providers.Event) error {
	if m.state == Terminated {
		return ErrTerminated
	}
	m.state = Terminated

	switch ev.Type {
	case providers.EventEnd:
		m.summary.Outcome = OutcomeEnd
	default:
		m.summary.Outcome = OutcomeError
		m.summary.ErrorMessage = ev.Message
		m.summary.ErrorKind = providers.KindTransport
		if ev.Err != nil {
			m.summary.ErrorKind = providers.Classify(ev.Err)
		}
	}
	return m.write(ev)
}

func (m *Multiplexer) cancelled() {
	m.state = Terminated
	m.summary.Outcome = OutcomeCanceled
	m.summary.ErrorKind = providers.KindCanceled
}

func (m *Multiplexer) write(ev providers.Event) error {
	if err := m.enc.Encode(m.w, ev); err != nil {
		m.logger.Debug("event write failed", "type", ev.Type, "error", err)
		return err
	}
	if m.flusher != nil {
		m.flusher.Flush()
	}
	return nil
}

func (m *Multiplexer) finish() Summary {
	m.summary.Duration = m.now().Sub(m.summary.StartedAt)
	return m.summary
}
