package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// HTTPAdapter is the base for adapters that talk to providers over raw HTTPS.
// It provides connection pooling and status code mapping. Requests are
// attempted once; failures are surfaced, not retried.
//
// Concrete adapters embed this struct and implement Normalize and Stream.
type HTTPAdapter struct {
	config AdapterConfig
	client *http.Client
}

// NewHTTPAdapter creates a base adapter with a pooled transport.
//
// No client-wide timeout is set because it would also bound the streaming
// body. Config.Timeout bounds the dial and the wait for response headers;
// the request context bounds everything else.
func NewHTTPAdapter(config AdapterConfig) *HTTPAdapter {
	config = config.WithDefaults()

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		ResponseHeaderTimeout: config.Timeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &HTTPAdapter{
		config: config,
		client: &http.Client{Transport: transport},
	}
}

// ID returns the provider the adapter serves.
func (p *HTTPAdapter) ID() ProviderID {
	return p.config.ID
}

// Config returns the adapter configuration.
func (p *HTTPAdapter) Config() AdapterConfig {
	return p.config
}

// Client returns the pooled HTTP client, for SDKs that accept one.
func (p *HTTPAdapter) Client() *http.Client {
	return p.client
}

// URL joins the configured base URL with path.
func (p *HTTPAdapter) URL(path string) string {
	return strings.TrimRight(p.config.BaseURL, "/") + path
}

// DoRequest performs one HTTP request. A 2xx response is returned with its
// body open; any other status is read, closed and mapped to a typed error.
func (p *HTTPAdapter) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &TransportError{Provider: p.config.ID, Message: "failed to create request", Cause: err}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.DebugContext(ctx, "sending request to provider",
		"provider", p.config.ID,
		"method", method,
		"url", url,
	)

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Provider: p.config.ID, Cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	message := extractErrorMessage(errorBody)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthError{Provider: p.config.ID, Message: message}
	case http.StatusTooManyRequests:
		return nil, &RateLimitError{
			Provider:   p.config.ID,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    message,
		}
	default:
		return nil, &TransportError{Provider: p.config.ID, StatusCode: resp.StatusCode, Message: message}
	}
}

// DoJSONRequest performs a JSON request and decodes the response.
func (p *HTTPAdapter) DoJSONRequest(ctx context.Context, method, url string, reqBody any, respBody any, headers map[string]string) error {
	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := p.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Provider: p.config.ID, Message: "failed to read response", Cause: err}
	}

	if respBody != nil {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return NewMalformedFrameError(p.config.ID, responseBytes, err)
		}
	}

	return nil
}

// Close releases idle pooled connections.
func (p *HTTPAdapter) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// extractErrorMessage pulls a human-readable message out of the common
// provider error envelopes, falling back to the raw body.
func extractErrorMessage(body []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Error) > 0 {
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "" {
				return nested.Message
			}
			var flat string
			if json.Unmarshal(envelope.Error, &flat) == nil && flat != "" {
				return flat
			}
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	return msg
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
