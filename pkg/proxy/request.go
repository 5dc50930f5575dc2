package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/playground/pkg/proxy/types"
)

// MaxRequestBodySize bounds the chat request body (10MB).
const MaxRequestBodySize = 10 * 1024 * 1024

// RequestError is a chat request that could not be decoded. It is answered
// with a JSON error body before any event is streamed.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

func (e *RequestError) Error() string { return e.Message }

// ToErrorResponse converts e to the JSON error body.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}

// ParseChatRequest decodes the body of a chat request.
//
// Only the JSON shape is checked here. Field values, including an unknown
// provider or an empty conversation, are reported later as error events so
// that the client always reads them from the stream.
func ParseChatRequest(r *http.Request) (*types.ChatRequest, error) {
	var req types.ChatRequest
	err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)).Decode(&req)
	if err == nil {
		return &req, nil
	}

	var tooLarge *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	case errors.Is(err, io.EOF):
		return nil, &RequestError{Message: "request body is empty", Code: types.CodeInvalidJSON, Param: "body"}
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, &RequestError{Message: "invalid JSON: " + err.Error(), Code: types.CodeInvalidJSON, Param: "body"}
	default:
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
}
