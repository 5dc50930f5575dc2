package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"mercator-hq/playground/pkg/providers"
)

var errTruncated = errors.New("stream closed before message_stop")

// streamEvent is the subset of Anthropic stream event fields the relay reads.
type streamEvent struct {
	Type  string `json:"type"`
	Delta *struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// streamReader reads Server-Sent Events from Anthropic's streaming API.
type streamReader struct {
	body    io.ReadCloser
	scanner *providers.SSEScanner
	done    bool
}

func newStreamReader(body io.ReadCloser) *streamReader {
	return &streamReader{
		body:    body,
		scanner: providers.NewSSEScanner(body),
	}
}

// Read returns the text of the next text delta, skipping every other event.
func (s *streamReader) Read(ctx context.Context) (string, error) {
	if s.done {
		return "", io.EOF
	}

	for {
		frame, err := s.scanner.Next()
		if errors.Is(err, io.EOF) {
			return "", &providers.TransportError{Provider: providers.Anthropic, Cause: errTruncated}
		}
		if err != nil {
			return "", &providers.TransportError{Provider: providers.Anthropic, Message: "failed to read stream", Cause: err}
		}
		if frame.Data == "" {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(frame.Data), &event); err != nil {
			return "", providers.NewMalformedFrameError(providers.Anthropic, []byte(frame.Data), err)
		}
		if event.Type == "" {
			event.Type = frame.Event
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta != nil && event.Delta.Type == "text_delta" {
				return event.Delta.Text, nil
			}
		case "message_stop":
			s.done = true
			return "", io.EOF
		case "error":
			message := "stream error"
			if event.Error != nil {
				message = event.Error.Type + ": " + event.Error.Message
			}
			return "", &providers.TransportError{Provider: providers.Anthropic, Message: message}
		case "message_start", "content_block_start", "content_block_stop", "message_delta", "ping":
		default:
			slog.DebugContext(ctx, "skipping unknown stream event",
				"provider", providers.Anthropic,
				"event", event.Type,
			)
		}
	}
}

// Close closes the response body.
func (s *streamReader) Close() error {
	return s.body.Close()
}
