// Package apperrors defines the structured error types shared by the mbcalc
// packages. Each type separates a class of failure (bad configuration, bad
// request data, failed render, server fault) and keeps the underlying cause
// reachable through errors.Is and errors.As.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess       = 0   // Render completed.
	ExitErrorGeneric  = 1   // Unclassified failure.
	ExitErrorTimeout  = 2   // The render deadline expired.
	ExitErrorMismatch = 3   // Renderers disagreed beyond the tolerance.
	ExitErrorConfig   = 4   // Invalid flags or environment values.
	ExitErrorCanceled = 130 // Interrupted, e.g. by SIGINT.
)

// ConfigError reports invalid user configuration: a flag, an environment
// override or a render option the engine cannot honour.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError wraps a failure that happened while a grid was being
// computed, such as a worker panic. Renderer names the tier involved when it
// is known.
type CalculationError struct {
	Renderer string
	Cause    error
}

// Error returns the cause's message, prefixed by the renderer name if set.
func (e CalculationError) Error() string {
	if e.Renderer != "" {
		return fmt.Sprintf("%s renderer: %v", e.Renderer, e.Cause)
	}
	return e.Cause.Error()
}

// Unwrap returns the cause.
func (e CalculationError) Unwrap() error { return e.Cause }

// NewCalculationError wraps cause for the given renderer.
func NewCalculationError(renderer string, cause error) error {
	return CalculationError{Renderer: renderer, Cause: cause}
}

// ServerError represents a failure of the HTTP server component, such as a
// listener that could not be opened.
type ServerError struct {
	Message string
	Cause   error
}

// Error combines the message with the cause, if any.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the cause, or nil.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a ServerError. cause may be nil.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// ValidationError reports request data that violates a precondition of the
// engine: an empty encoding, mismatched lengths, a non-positive grid size.
type ValidationError struct {
	// Field names the offending input. Empty when the problem is not tied to
	// one field.
	Field   string
	Message string
	// Value is the rejected value, when useful for diagnostics.
	Value any
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// IsContextError reports whether err stems from context cancellation or an
// expired deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	var ce ConfigError
	var ve ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &ce), errors.As(err, &ve):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}
