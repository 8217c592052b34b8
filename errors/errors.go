// Package errors provides the error handling system for the leetgate
// translation gateway. It includes structured error types, JSON response
// formatting, request ID tracking, and integrated logging with Uber's
// zap logger.
//
// The package is used throughout the leetgate codebase to provide
// consistent error handling and reporting:
//
//   - Structured error values carrying an error category
//   - A single JSON wire shape for error responses: {"error": "<message>"}
//   - Request ID correlation through the X-Request-ID header
//   - Integrated logging with zap
//
// Basic usage:
//
//	// Simple error response
//	errors.Error(w, "Something went wrong", http.StatusInternalServerError)
//
//	// Type-specific error with context
//	errors.ErrorWithType(w, "No text provided", errors.ValidationError, http.StatusBadRequest)
//
// For more complex scenarios, use the constructors in types.go:
//
//	err := errors.NewUpstreamError(requestID, "quota exceeded", upstreamErr)
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the default zap logger instance used throughout the package.
// It is initialized to a production configuration but can be overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// If nil is provided, the function will do nothing to prevent
// accidentally disabling logging.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType represents different categories of errors that can occur
// in the gateway. Each type corresponds to a specific kind of error
// scenario and carries appropriate HTTP status codes and handling logic.
type ErrorType string

const (
	// ValidationError represents input validation failures
	ValidationError ErrorType = "validation_error"

	// ConfigError represents configuration-related errors, such as a
	// missing upstream API key
	ConfigError ErrorType = "config_error"

	// UpstreamError represents failures reported by the upstream
	// translation API
	UpstreamError ErrorType = "upstream_error"

	// InternalError represents unexpected internal server errors
	InternalError ErrorType = "internal_error"

	// RateLimitError represents rate limiting errors
	RateLimitError ErrorType = "rate_limit_error"
)

// GateError is our custom error type that implements the error interface
// and provides additional context about the error. On the wire it
// serializes to the gateway's fixed error shape {"error": "<message>"};
// the category, status code and request ID stay server-side for logging
// and response headers.
type GateError struct {
	// Type categorizes the error for logging and metrics
	Type ErrorType `json:"-"`

	// Message is a human-readable error description. It is the only
	// field exposed to clients.
	Message string `json:"error"`

	// Code is the HTTP status code (not exposed in JSON)
	Code int `json:"-"`

	// RequestID links the error to a specific request
	RequestID string `json:"-"`

	// err is the underlying error (not exposed in JSON)
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, message, and underlying error (if any).
func (e *GateError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *GateError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *GateError) Is(target error) bool {
	t, ok := target.(*GateError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError formats and writes a GateError to an http.ResponseWriter.
// It sets the appropriate content type and status code, then writes
// the error as a JSON response. This is the final and only write to the
// response for the request; callers must return immediately after.
func WriteError(w http.ResponseWriter, err *GateError) {
	w.Header().Set("Content-Type", "application/json")
	if err.RequestID != "" {
		w.Header().Set("X-Request-ID", err.RequestID)
	}
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}

// Error is a drop-in replacement for http.Error that creates and writes
// a GateError with the InternalError type. It automatically includes
// the request ID from the response headers if available.
func Error(w http.ResponseWriter, message string, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &GateError{
		Type:      InternalError,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}

// ErrorWithType is like Error but allows specifying the error type.
// This is useful when you want to categorize errors for logs and
// metrics while maintaining the simple interface of http.Error.
func ErrorWithType(w http.ResponseWriter, message string, errType ErrorType, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &GateError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}
