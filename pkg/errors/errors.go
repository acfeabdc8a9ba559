// Package errors provides structured error types for the nodeflow editor core.
//
// This package defines error codes and types that enable:
//   - One failure taxonomy shared by the editor, the HTTP API and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-facing messages for transient notifications
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Three codes form the editor's failure taxonomy:
//   - UNKNOWN_ENDPOINT: an edge references a node that is not in the graph
//   - CLIPBOARD_UNAVAILABLE: the clipboard backend is absent or permission was denied
//   - SCHEMA_ERROR: a loaded document or pasted payload is malformed
//
// The remaining codes cover input validation and internal failures. None of
// them is fatal: every failure path leaves the live graph and its history
// untouched.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownEndpoint, "edge %s: target %s not found", id, target)
//	if errors.Is(err, errors.ErrCodeUnknownEndpoint) {
//	    // Report to the user
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSchema, decodeErr, "invalid clipboard payload")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Editor taxonomy
	ErrCodeUnknownEndpoint      Code = "UNKNOWN_ENDPOINT"
	ErrCodeClipboardUnavailable Code = "CLIPBOARD_UNAVAILABLE"
	ErrCodeSchema               Code = "SCHEMA_ERROR"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeDuplicateID  Code = "DUPLICATE_ID"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// The outermost *Error decides: a SCHEMA_ERROR wrapping an INVALID_INPUT
// reports SCHEMA_ERROR only.
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

// Recoverable reports whether err belongs to the editor's recoverable
// taxonomy. Recoverable failures are surfaced as notifications and never
// retried without new user intent.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnknownEndpoint, ErrCodeClipboardUnavailable, ErrCodeSchema,
		ErrCodeInvalidInput, ErrCodeDuplicateID, ErrCodeNotFound:
		return true
	}
	return false
}
