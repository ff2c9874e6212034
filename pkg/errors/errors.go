// Package errors provides structured error types for meteomap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, terminal editor and HTTP service
//   - Machine-readable error codes for programmatic handling
//   - User-facing notices that omit the code prefix
//
// # Error Codes
//
// Codes follow the taxonomy of the editor:
//   - INVALID_*: validation failures (malformed project files, bad config)
//   - NOT_FOUND: a referenced resource does not exist
//   - ELEMENT_LOCKED: an edit targeted a locked element
//   - STORAGE_ERROR: autosave backend failures (logged and swallowed by callers)
//   - EXPORT_ERROR: rasterization failures (reported as non-fatal notices)
//
// Resolution failures (unknown icon or background ids) are never errors; the
// catalog degrades to defaults instead.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidProject, "missing version tag")
//	if errors.Is(err, errors.ErrCodeInvalidProject) {
//	    // show blocking notice, keep current document
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "write %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidProject     Code = "INVALID_PROJECT"
	ErrCodeInvalidElement     Code = "INVALID_ELEMENT"
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeInvalidCatalog     Code = "INVALID_CATALOG"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeLocked   Code = "ELEMENT_LOCKED"

	// Collaborator errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeExport  Code = "EXPORT_ERROR"

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

// IsValidation reports whether err is one of the validation codes. Validation
// errors are shown to the user as blocking notices.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidProject, ErrCodeInvalidElement,
		ErrCodeUnsupportedVersion, ErrCodeInvalidConfig, ErrCodeInvalidCatalog:
		return true
	}
	return false
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
