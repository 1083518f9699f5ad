// Package errors provides structured error types for layerspec.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the SDK, the layer strategy, and the CLI
//   - Machine-readable error codes for diagnostics shown to the UI collaborator
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the rewrite engine's failure taxonomy:
//   - INVALID_CONFIG: a layer descriptor is malformed (unknown type, missing y).
//     Fatal to the pass; the host falls back to the unmodified base spec.
//   - NOT_APPLICABLE: the spec's structure does not admit layers (non-measure
//     axis, nested facets, non-rectangular coordinates). Non-fatal.
//   - LOOKUP_MISS: an unknown scale, source, or dimension name. Accessors absorb
//     these and return defaults; the code exists for diagnostics only.
//   - STRUCTURAL_CORRUPTION: a cyclic tree or a node missing required fields.
//     Aborts the pass.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "unknown layer type %q", t)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // surface to the UI
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode spec %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Rewrite engine taxonomy
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeNotApplicable  Code = "NOT_APPLICABLE"
	ErrCodeLookupMiss     Code = "LOOKUP_MISS"
	ErrCodeStructural     Code = "STRUCTURAL_CORRUPTION"
	ErrCodeUnknownElement Code = "UNKNOWN_ELEMENT"

	// Input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidName  Code = "INVALID_NAME"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodePluginNotFound Code = "PLUGIN_NOT_FOUND"

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

// IsFatal reports whether an error with this code must abort a rewrite pass.
// Applicability violations and lookup misses degrade gracefully; everything
// else stops the pass.
func (c Code) IsFatal() bool {
	switch c {
	case ErrCodeNotApplicable, ErrCodeLookupMiss:
		return false
	}
	return true
}
