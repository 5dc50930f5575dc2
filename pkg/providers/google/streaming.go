package google

import (
	"context"
	"errors"
	"io"
	"iter"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"mercator-hq/playground/pkg/providers"
)

// streamReader pulls responses from the SDK's streaming iterator.
type streamReader struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func newStreamReader(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) *streamReader {
	next, stop := iter.Pull2(seq)
	return &streamReader{next: next, stop: stop}
}

// Read returns the visible text of the next response.
func (s *streamReader) Read(ctx context.Context) (string, error) {
	resp, err, ok := s.next()
	if !ok {
		return "", io.EOF
	}
	if err != nil {
		return "", mapError(ctx, err)
	}
	if resp == nil {
		return "", nil
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		message := "prompt blocked: " + string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			message += ": " + fb.BlockReasonMessage
		}
		return "", &providers.TransportError{Provider: providers.Google, Message: message}
	}
	return extractVisibleText(resp), nil
}

// Close stops the iterator, which cancels the underlying request.
func (s *streamReader) Close() error {
	s.stop()
	return nil
}

func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// mapError converts SDK errors into the relay's error taxonomy.
func mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &providers.AuthError{Provider: providers.Google, Message: apiErr.Message}
		case http.StatusTooManyRequests:
			return &providers.RateLimitError{Provider: providers.Google, Message: apiErr.Message}
		default:
			return &providers.TransportError{Provider: providers.Google, StatusCode: apiErr.Code, Message: apiErr.Message, Cause: err}
		}
	}
	return &providers.TransportError{Provider: providers.Google, Cause: err}
}
