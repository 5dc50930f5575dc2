package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
)

// NativeRequest is a provider-native payload produced by the normalizer and
// consumed only by the adapter serving Target.
type NativeRequest interface {
	Target() ProviderID
}

// Adapter is the contract every provider backend implements. Adapters are
// bound to one provider, immutable after construction and safe for
// concurrent use; each Stream call is independent.
//
// Example usage:
//
//	native, err := adapter.Normalize(req)
//	if err != nil {
//	    return err
//	}
//	for ev := range adapter.Stream(ctx, native) {
//	    fmt.Println(ev.Type, ev.Content)
//	}
type Adapter interface {
	// ID returns the provider the adapter serves.
	ID() ProviderID

	// Normalize converts a ChatRequest into the adapter's native payload.
	// It performs no I/O.
	Normalize(req *ChatRequest) (NativeRequest, error)

	// Stream opens the provider call when iteration begins and yields
	// Content events followed by exactly one End or Error. Each pull may
	// block on network I/O. Stopping iteration early, or cancelling ctx,
	// releases the provider connection; after cancellation is observed no
	// further events are yielded.
	Stream(ctx context.Context, req NativeRequest) iter.Seq[Event]
}

// StreamReader reads text deltas from an open provider stream.
type StreamReader interface {
	// Read returns the next text delta. An empty delta with a nil error is
	// skipped by the caller. io.EOF marks normal completion.
	Read(ctx context.Context) (string, error)

	// Close releases the underlying transport.
	Close() error
}

// OpenFunc opens a provider stream.
type OpenFunc func(ctx context.Context) (StreamReader, error)

// ReaderEvents adapts a pull-based StreamReader into the lazy event sequence
// returned by Adapter.Stream. The stream is opened on the first pull and
// closed when the sequence ends or the consumer stops early.
//
// Errors become a single Error event. Once ctx is done, nothing more is
// yielded, including no terminal event.
func ReaderEvents(ctx context.Context, open OpenFunc) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		r, err := open(ctx)
		if err != nil {
			if ctx.Err() == nil {
				yield(ErrorEvent(err))
			}
			return
		}
		defer r.Close()

		for {
			delta, err := r.Read(ctx)
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				yield(EndEvent())
				return
			}
			if err != nil {
				yield(ErrorEvent(err))
				return
			}
			if delta == "" {
				continue
			}
			if !yield(ContentEvent(delta)) {
				return
			}
		}
	}
}

// Single yields one event. Adapters use it to report failures detected
// before any I/O, such as a payload built for another provider.
func Single(ev Event) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		yield(ev)
	}
}

// WrongPayload returns the error for a NativeRequest of unexpected type.
func WrongPayload(id ProviderID, req NativeRequest) error {
	return &ConfigError{Provider: id, Field: "payload", Message: fmt.Sprintf("unexpected payload type %T", req)}
}
