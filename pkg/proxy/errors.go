package proxy

import (
	"errors"

	"mercator-hq/playground/pkg/proxy/types"
)

const internalErrorMessage = "An internal error occurred. Please try again later."

// HandleError converts an error raised before the event stream begins into
// an error response. Only request errors keep their message.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}
	return types.NewServerError(internalErrorMessage)
}
