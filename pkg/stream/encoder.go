package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mercator-hq/playground/pkg/providers"
)

// Encoder frames events for one outbound transport.
type Encoder interface {
	// ContentType is the response media type.
	ContentType() string

	// Encode writes one event frame.
	Encode(w io.Writer, ev providers.Event) error
}

// SSEEncoder writes Server-Sent Events "data:" frames.
type SSEEncoder struct{}

// ContentType implements Encoder.
func (SSEEncoder) ContentType() string { return "text/event-stream" }

// Encode implements Encoder. Each frame is formatted as:
//
//	data: {"type":"content","content":"Hel"}
//
// followed by a blank line.
func (SSEEncoder) Encode(w io.Writer, ev providers.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// NDJSONEncoder writes newline-delimited JSON.
type NDJSONEncoder struct{}

// ContentType implements Encoder.
func (NDJSONEncoder) ContentType() string { return "application/x-ndjson" }

// Encode implements Encoder.
func (NDJSONEncoder) Encode(w io.Writer, ev providers.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// EncoderFor picks the framing asked for by an Accept header. SSE is the
// default.
func EncoderFor(accept string) Encoder {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		switch strings.ToLower(strings.TrimSpace(mediaType)) {
		case "application/x-ndjson", "application/jsonl", "application/jsonlines":
			return NDJSONEncoder{}
		case "text/event-stream":
			return SSEEncoder{}
		}
	}
	return SSEEncoder{}
}
