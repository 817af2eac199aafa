// Package errors provides structured error types for buildingmap.
//
// This package defines error codes and types that enable:
//   - Distinguishable failure kinds for every way a save pass can abort
//   - Machine-readable error codes for the HTTP trigger and the CLI
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Resource not found
//   - PRECONDITION, MISSING_COMPONENT, DANGLING_REFERENCE, DUPLICATE_LEVEL:
//     scene-graph invariants violated at save time
//   - WRITE_FAILED: the persistence sink could not store the document
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateLevel, "level %q appears twice", name)
//	if errors.Is(err, errors.ErrCodeDuplicateLevel) {
//	    // Handle duplicate level
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeWriteFailed, origErr, "write %s", location)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidLocation Code = "INVALID_LOCATION"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Save pass errors
	ErrCodePrecondition      Code = "PRECONDITION"
	ErrCodeMissingComponent  Code = "MISSING_COMPONENT"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"
	ErrCodeDuplicateLevel    Code = "DUPLICATE_LEVEL"

	// Persistence errors
	ErrCodeWriteFailed Code = "WRITE_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsSaveAbort reports whether err is one of the scene-invariant failures that
// abort a save pass before anything reaches the sink.
func IsSaveAbort(err error) bool {
	switch GetCode(err) {
	case ErrCodePrecondition, ErrCodeMissingComponent, ErrCodeDanglingReference, ErrCodeDuplicateLevel:
		return true
	}
	return false
}
