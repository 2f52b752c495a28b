// Package spawnerrors provides structured error handling for spawnpool with
// rich context, stack traces, and error categorization. It enables consistent
// error handling patterns across the entire codebase.
//
// # Overview
//
// The spawnerrors package extends Go's standard error handling with:
//   - Error categorization through ErrorType
//   - Structured context with key-value details
//   - Automatic stack trace capture
//   - Error wrapping with cause preservation
//
// # Basic Usage
//
//	// Create a new error
//	err := spawnerrors.New(spawnerrors.ErrorTypeInvalidState, "instance already despawned")
//
//	// Add context
//	err = err.WithDetail("instance", inst.ID).
//	         WithDetail("template", inst.TemplateKey())
//
//	// Wrap existing errors
//	if err := host.SetActive(obj, true); err != nil {
//	    return spawnerrors.Wrap(err, spawnerrors.ErrorTypeHost, "activation failed").
//	        WithDetail("object", obj)
//	}
//
// # Error Types
//
// Errors are categorized by type, which helps with:
//   - Error handling strategies (abort vs. report-and-continue)
//   - Monitoring and alerting
//   - Debugging and troubleshooting
//
// Lifecycle misuse (double despawn, over-release, duplicate registration) is
// always ErrorTypeInvalidState or ErrorTypeConflict: a caller-correctness bug
// that the runtime reports and survives, never a panic.
//
// # Thread Safety
//
// Error instances are not thread-safe for modification. Create new
// instances or use WithDetail before sharing across goroutines.
package spawnerrors

import (
	"errors"
	"runtime"

	stringpool "github.com/ajitpratap0/spawnpool/pkg/strings"
)

// ErrorType represents the category of error, used for error handling
// strategies and monitoring.
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents resource not found errors
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents conflicting registration errors
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeInvalidState represents lifecycle state violations
	ErrorTypeInvalidState ErrorType = "invalid_state"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeCapability represents capability/feature not supported errors
	ErrorTypeCapability ErrorType = "capability"
	// ErrorTypeHost represents failures reported by the host collaborators
	ErrorTypeHost ErrorType = "host"
	// ErrorTypePersistence represents persistence hook failures
	ErrorTypePersistence ErrorType = "persistence"
)

// Error represents a structured error with context, providing rich debugging
// information and enabling sophisticated error handling strategies.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack, capturing
// the function name, file path, and line number for debugging.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface, returning a formatted error message
// that includes the error type, message, and cause (if present).
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, enabling compatibility with errors.Is
// and errors.As for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error, providing additional
// context for debugging and monitoring. This method can be chained for
// adding multiple details.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, automatically
// capturing the call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the
// original error as the cause. If the error is already a structured Error,
// its stack trace is preserved. Returns nil if the input error is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type, useful for error handling
// strategies and conditional logic based on error categories.
//
// Example:
//
//	if spawnerrors.IsType(err, spawnerrors.ErrorTypeNotFound) {
//	    // No handler registered for this key.
//	}
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top. This is used
// internally to record the call stack at error creation points.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
