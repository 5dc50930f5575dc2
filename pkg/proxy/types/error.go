package types

import "net/http"

// ErrorResponse is the JSON body returned when a request is rejected before
// its event stream begins. Once streaming has started every failure is an
// error event instead.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a rejected request. Param names the offending part
// of the request when there is one.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error types.
const (
	ErrorTypeInvalidRequest   = "invalid_request_error"
	ErrorTypeNotFound         = "not_found"
	ErrorTypeMethodNotAllowed = "method_not_allowed"
	ErrorTypeServerError      = "server_error"
)

// Error codes.
const (
	CodeInvalidJSON     = "invalid_json"
	CodeRequestTooLarge = "request_too_large"
	CodeInternalError   = "internal_error"
)

var statusByType = map[string]int{
	ErrorTypeInvalidRequest:   http.StatusBadRequest,
	ErrorTypeNotFound:         http.StatusNotFound,
	ErrorTypeMethodNotAllowed: http.StatusMethodNotAllowed,
}

// NewErrorResponse creates an error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Message: message, Type: errorType, Param: param, Code: code}}
}

// NewInvalidRequestError rejects a malformed request (400, or 413 for
// CodeRequestTooLarge).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewNotFoundError answers a request for an unknown route.
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeNotFound, "", "")
}

// NewMethodNotAllowedError answers a known route called with the wrong
// method.
func NewMethodNotAllowedError(method string) *ErrorResponse {
	return NewErrorResponse("method "+method+" is not allowed", ErrorTypeMethodNotAllowed, "", "")
}

// NewServerError reports an internal failure without its details.
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// HTTPStatusCode returns the status the error is sent with. Unknown types
// are internal errors.
func (e *ErrorDetail) HTTPStatusCode() int {
	if e.Code == CodeRequestTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	if status, ok := statusByType[e.Type]; ok {
		return status
	}
	return http.StatusInternalServerError
}
