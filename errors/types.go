package errors

import (
	"net/http"
)

// NewError creates a new GateError with the given parameters.
// It is a general-purpose constructor that allows full control over
// the error's fields. For most cases, you should use one of the
// specialized constructors below.
//
// Example:
//
//	err := NewError(InternalError, "something broke", 500, "req_123", nil)
func NewError(errType ErrorType, message string, code int, requestID string, err error) *GateError {
	return &GateError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		err:       err,
	}
}

// NewValidationError creates a validation error with appropriate defaults.
// Use this for any request validation failures, such as:
//   - Missing required fields ("No text provided")
//   - Invalid mode values
//   - Oversized prompts
func NewValidationError(requestID, message string) *GateError {
	return &GateError{
		Type:      ValidationError,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
	}
}

// NewConfigError creates a configuration error with appropriate defaults.
// Use this when a request cannot be served because of missing or broken
// deployment configuration, such as an unset upstream API key. These
// errors are fatal per deployment until an operator fixes the
// configuration, so they surface as 500s.
func NewConfigError(requestID, message string) *GateError {
	return &GateError{
		Type:      ConfigError,
		Message:   message,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
	}
}

// NewUpstreamError creates an upstream error with appropriate defaults.
// Use this when the translation API reports a failure or cannot be
// reached. The message is relayed to the caller verbatim, so pass the
// upstream's own error message when one could be extracted.
func NewUpstreamError(requestID, message string, err error) *GateError {
	return &GateError{
		Type:      UpstreamError,
		Message:   message,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewInternalError creates an internal server error with appropriate
// defaults. Use this for unexpected errors that are not covered by
// other error types: panics, encoding failures, malformed request
// bodies. The underlying error's message is surfaced to the caller.
func NewInternalError(requestID string, err error) *GateError {
	message := "An internal error occurred"
	if err != nil {
		message = err.Error()
	}
	return &GateError{
		Type:      InternalError,
		Message:   message,
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}

// NewRateLimitError creates a rate limit error with appropriate defaults.
func NewRateLimitError(requestID string) *GateError {
	return &GateError{
		Type:      RateLimitError,
		Message:   "Rate limit exceeded",
		Code:      http.StatusTooManyRequests,
		RequestID: requestID,
	}
}
