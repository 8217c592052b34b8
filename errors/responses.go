// Package errors provides error response utilities.
package errors

import (
	"errors"
)

// ErrorResponse represents the standardized error response format that
// is returned to clients when an error occurs. The gateway's wire
// contract is deliberately small: a single "error" field carrying a
// human-readable message. Request IDs travel in the X-Request-ID
// response header rather than the body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// As is a wrapper around errors.As for better error type assertion
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
