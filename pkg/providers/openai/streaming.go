package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"mercator-hq/playground/pkg/providers"
)

// streamReader reads text deltas from an SDK chat completion stream.
type streamReader struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func newStreamReader(ctx context.Context, client openai.Client, params openai.ChatCompletionNewParams) (*streamReader, error) {
	stream := client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, mapError(ctx, err)
	}
	return &streamReader{stream: stream}, nil
}

// Read returns the choice 0 text of the next chunk. Chunks without text,
// such as the initial role delta or usage-only chunks, return "".
func (s *streamReader) Read(ctx context.Context) (string, error) {
	if !s.stream.Next() {
		if err := s.stream.Err(); err != nil {
			return "", mapError(ctx, err)
		}
		return "", io.EOF
	}

	chunk := s.stream.Current()
	var b strings.Builder
	for _, choice := range chunk.Choices {
		if choice.Index != 0 {
			continue
		}
		b.WriteString(choice.Delta.Content)
	}
	return b.String(), nil
}

// Close closes the SDK stream and its response body.
func (s *streamReader) Close() error {
	return s.stream.Close()
}

// mapError converts SDK errors into the relay's error taxonomy.
func mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = err.Error()
		}
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &providers.AuthError{Provider: providers.OpenAI, Message: message}
		case http.StatusTooManyRequests:
			return &providers.RateLimitError{Provider: providers.OpenAI, Message: message}
		default:
			return &providers.TransportError{Provider: providers.OpenAI, StatusCode: apiErr.StatusCode, Message: message, Cause: err}
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &providers.MalformedFrameError{Provider: providers.OpenAI, Cause: err}
	}

	return &providers.TransportError{Provider: providers.OpenAI, Cause: err}
}
