// Package errors provides structured error types for ghdepup.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the pipeline and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Aggregated reports that name every failing input or dependency
//
// # Error Codes
//
// Codes group failures by the stage that produced them:
//   - configuration: TOO_FEW_INPUTS, READ_CONFIG, INVALID_ENCODING,
//     INVALID_CONFIG, MISSING_CREDENTIAL, INVALID_MANIFEST
//   - tag fetching: FETCH_FAILED, NOT_FOUND, UNAUTHORIZED, NETWORK_ERROR,
//     MALFORMED_RESPONSE
//   - output: WRITE_FAILED
//
// # Usage
//
//	err := errors.New(errors.ErrCodeTooFewInputs, "at least two config files needed, got %d", n)
//	if errors.Is(err, errors.ErrCodeTooFewInputs) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeReadConfig, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeTooFewInputs      Code = "TOO_FEW_INPUTS"
	ErrCodeReadConfig        Code = "READ_CONFIG"
	ErrCodeInvalidEncoding   Code = "INVALID_ENCODING"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeMissingCredential Code = "MISSING_CREDENTIAL"
	ErrCodeInvalidManifest   Code = "INVALID_MANIFEST"

	// Tag fetch errors
	ErrCodeFetchFailed       Code = "FETCH_FAILED"
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeUnauthorized      Code = "UNAUTHORIZED"
	ErrCodeNetwork           Code = "NETWORK_ERROR"
	ErrCodeMalformedResponse Code = "MALFORMED_RESPONSE"

	// Output errors
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
// It unwraps the error chain (including the members of a [Multi]) looking
// for an *Error or *Multi with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) && e.Code == code {
		return true
	}
	var m *Multi
	if errors.As(err, &m) {
		if m.Code == code {
			return true
		}
		for _, inner := range m.Errs {
			if Is(inner, code) {
				return true
			}
		}
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is neither an *Error nor a *Multi.
func GetCode(err error) Code {
	var m *Multi
	if errors.As(err, &m) {
		return m.Code
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var m *Multi
	if errors.As(err, &m) {
		return m.Error()
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Multi aggregates several independent failures of one stage.
// Every member is kept so a report can name all of them, not just the first.
type Multi struct {
	Code Code    // Code shared by the aggregate
	Errs []error // Contributing errors in a stable order
}

// Collect builds a *Multi from errs, skipping nil entries.
// It returns nil when no non-nil error is left.
func Collect(code Code, errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &Multi{Code: code, Errs: kept}
}

// Error lists every contributing error on its own line.
func (m *Multi) Error() string {
	lines := make([]string, len(m.Errs))
	for i, err := range m.Errs {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("%s: %d error(s):\n%s", m.Code, len(m.Errs), strings.Join(lines, "\n"))
}

// Unwrap exposes the members to errors.Is and errors.As.
func (m *Multi) Unwrap() []error {
	return m.Errs
}
