package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyConversation is returned by the normalizer when a request carries
// no user or assistant messages. It is raised before any network call.
var ErrEmptyConversation = errors.New("conversation has no messages")

// UnsupportedProviderError reports an identifier outside the supported set.
// It is terminal and never retried.
type UnsupportedProviderError struct {
	// Provider is the identifier as received.
	Provider string
}

// Error implements the error interface.
func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q", e.Provider)
}

// NotConfiguredError reports a supported provider whose credential is absent.
// The caller can fix it by setting the named variable and restarting.
type NotConfiguredError struct {
	// Provider is the provider that lacks a credential.
	Provider ProviderID

	// Setting names where the credential is expected, e.g. "COHERE_API_KEY".
	Setting string
}

// Error implements the error interface.
func (e *NotConfiguredError) Error() string {
	if e.Setting == "" {
		return fmt.Sprintf("provider %q is not configured", e.Provider)
	}
	return fmt.Sprintf("provider %q is not configured: set %s", e.Provider, e.Setting)
}

// ValidationError represents a request validation failure.
type ValidationError struct {
	// Field is the name of the field that failed validation
	Field string

	// Message describes the validation failure
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TransportError represents a network or provider-side failure.
// The relay never retries these; the caller may retry the whole request.
type TransportError struct {
	// Provider is the provider that failed
	Provider ProviderID

	// StatusCode is the HTTP status code (0 if the request never completed)
	StatusCode int

	// Message is the provider's error message when one could be extracted
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, msg)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure.
// This occurs when the provider rejects the API key (HTTP 401 or 403).
type AuthError struct {
	Provider ProviderID
	Message  string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
type RateLimitError struct {
	Provider ProviderID

	// RetryAfter is the wait the provider asked for, zero if unspecified
	RetryAfter time.Duration

	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %v): %s", e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// MalformedFrameError reports a native stream frame that could not be parsed.
// Frames that parse but carry unknown fields or event types are skipped
// instead of producing this error.
type MalformedFrameError struct {
	Provider ProviderID

	// Frame is the raw frame, truncated for logging
	Frame string

	Cause error
}

// Error implements the error interface.
func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("provider %q sent a malformed frame: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *MalformedFrameError) Unwrap() error {
	return e.Cause
}

// NewMalformedFrameError builds a MalformedFrameError, truncating long frames.
func NewMalformedFrameError(provider ProviderID, frame []byte, cause error) *MalformedFrameError {
	const maxFrame = 256
	s := string(frame)
	if len(s) > maxFrame {
		s = s[:maxFrame] + "..."
	}
	return &MalformedFrameError{Provider: provider, Frame: s, Cause: cause}
}

// ConfigError represents an adapter configuration error detected at creation.
type ConfigError struct {
	Provider ProviderID
	Field    string
	Message  string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q config error (%s): %s", e.Provider, e.Field, e.Message)
}

// Error kinds returned by Classify. They are stable and used as metric
// labels and in relay records.
const (
	KindUnsupportedProvider = "unsupported_provider"
	KindNotConfigured       = "not_configured"
	KindEmptyConversation   = "empty_conversation"
	KindValidation          = "validation"
	KindTransport           = "transport"
	KindMalformedFrame      = "malformed_frame"
	KindCanceled            = "canceled"
	KindInternal            = "internal"
)

// Classify maps an error to one of the Kind constants.
func Classify(err error) string {
	var (
		unsupported   *UnsupportedProviderError
		notConfigured *NotConfiguredError
		validation    *ValidationError
		malformed     *MalformedFrameError
		transport     *TransportError
		auth          *AuthError
		rateLimit     *RateLimitError
		cfgErr        *ConfigError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.As(err, &unsupported):
		return KindUnsupportedProvider
	case errors.As(err, &notConfigured), errors.As(err, &cfgErr):
		return KindNotConfigured
	case errors.Is(err, ErrEmptyConversation):
		return KindEmptyConversation
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &malformed):
		return KindMalformedFrame
	case errors.As(err, &transport), errors.As(err, &auth), errors.As(err, &rateLimit):
		return KindTransport
	default:
		return KindInternal
	}
}
