// Package errors provides structured error handling for tabula
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents invalid arguments (precision, scale, fill specs)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents a missing column or file
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeMetadataMissing represents a missing sidecar descriptor
	ErrorTypeMetadataMissing ErrorType = "metadata_missing"
	// ErrorTypeLengthMismatch represents vectors of unequal length
	ErrorTypeLengthMismatch ErrorType = "length_mismatch"
	// ErrorTypeUnsupportedKind represents a kind or physical type outside the supported set
	ErrorTypeUnsupportedKind ErrorType = "unsupported_kind"
	// ErrorTypeSchemaMismatch represents files whose structure disagrees with their descriptor
	ErrorTypeSchemaMismatch ErrorType = "schema_mismatch"
	// ErrorTypeInvalidOperation represents arithmetic that cannot produce a result
	ErrorTypeInvalidOperation ErrorType = "invalid_operation"
	// ErrorTypeWriteFailed represents I/O failures while saving
	ErrorTypeWriteFailed ErrorType = "write_failed"
	// ErrorTypeReadFailed represents I/O failures while loading
	ErrorTypeReadFailed ErrorType = "read_failed"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
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

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the type of the outermost structured error, or empty.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Type
}

// IsNotFound reports whether err is a not_found or metadata_missing error.
// A missing sidecar is a specialisation of a missing resource.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound) || IsType(err, ErrorTypeMetadataMissing)
}

// captureStack captures the current call stack
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
