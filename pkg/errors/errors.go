// Package errors provides structured error types for MinedMap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes name the stage that failed rather than the symptom:
//   - STAT_FAILED, PUBLISH_FAILED: filesystem errors around one region
//   - CORRUPT_REGION, CORRUPT_NBT, DECODE_FAILED: region payload errors
//   - ENCODE_FAILED: tile image encoding errors
//   - INVALID_INPUT: top-level argument and directory errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCorruptRegion, "chunk %d,%d: offset past EOF", x, z)
//	if errors.Is(err, errors.ErrCodeCorruptRegion) {
//	    // Handle region corruption
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeEncodeFailed, origErr, "encode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Top-level input errors (run-fatal)
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Filesystem errors (region-scoped)
	ErrCodeStatFailed    Code = "STAT_FAILED"
	ErrCodePublishFailed Code = "PUBLISH_FAILED"

	// Decoding errors (region-scoped)
	ErrCodeCorruptRegion Code = "CORRUPT_REGION"
	ErrCodeCorruptNBT    Code = "CORRUPT_NBT"
	ErrCodeDecodeFailed  Code = "DECODE_FAILED"

	// Encoding errors (region-scoped)
	ErrCodeEncodeFailed Code = "ENCODE_FAILED"

	// Configuration errors
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
