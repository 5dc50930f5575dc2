package cohere

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"mercator-hq/playground/pkg/providers"
)

var errTruncated = errors.New("stream closed before stream-end")

// streamEvent is the subset of Cohere stream event fields the relay reads.
type streamEvent struct {
	EventType    string `json:"event_type"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// Finish reasons that end a stream normally.
var cleanFinish = map[string]bool{
	"COMPLETE":   true,
	"MAX_TOKENS": true,
}

type streamReader struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newStreamReader(body io.ReadCloser) *streamReader {
	return &streamReader{
		body:    body,
		scanner: providers.NewLineScanner(body),
	}
}

// Read returns the text of the next text-generation event.
func (s *streamReader) Read(ctx context.Context) (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		line = strings.TrimPrefix(line, "data: ")
		if line == "" {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return "", providers.NewMalformedFrameError(providers.Cohere, []byte(line), err)
		}

		switch event.EventType {
		case "text-generation":
			return event.Text, nil
		case "stream-end":
			s.done = true
			if cleanFinish[event.FinishReason] {
				return "", io.EOF
			}
			return "", &providers.TransportError{
				Provider: providers.Cohere,
				Message:  "stream ended with finish reason " + event.FinishReason,
			}
		case "stream-start", "search-queries-generation", "search-results", "citation-generation", "tool-calls-generation", "tool-calls-chunk":
		default:
			slog.DebugContext(ctx, "skipping unknown stream event",
				"provider", providers.Cohere,
				"event", event.EventType,
			)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", &providers.TransportError{Provider: providers.Cohere, Message: "failed to read stream", Cause: err}
	}
	return "", &providers.TransportError{Provider: providers.Cohere, Cause: errTruncated}
}

// Close closes the response body.
func (s *streamReader) Close() error {
	return s.body.Close()
}
