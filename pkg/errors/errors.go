// Package errors provides structured error types for trackgrid.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Arrangement codes are raised by the grid engine and always describe an
// invalid configuration (tracks, spans, explicit starts, bounds). They are
// never retried internally; the caller fixes its input and arranges again.
//
// The remaining codes follow the usual hierarchical convention:
//   - INVALID_*: Input validation failures
//   - *NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSpanExceedsGridWidth, "item %q spans %d columns", id, n)
//	if errors.Is(err, errors.ErrCodeSpanExceedsGridWidth) {
//	    // Reduce the span or add columns
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidDocument, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Arrangement error codes raised by the grid engine.
const (
	ErrCodeInvalidTrackSpec             Code = "INVALID_TRACK_SPEC"
	ErrCodeInvalidColumnCount           Code = "INVALID_COLUMN_COUNT"
	ErrCodeSpanExceedsGridWidth         Code = "SPAN_EXCEEDS_GRID_WIDTH"
	ErrCodeOverlappingExplicitPlacement Code = "OVERLAPPING_EXPLICIT_PLACEMENT"
	ErrCodeInsufficientSpace            Code = "INSUFFICIENT_SPACE"
)

// General error codes.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidID       Code = "INVALID_ID"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeGridNotFound Code = "GRID_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// arrangementCodes is the set of codes produced by the grid engine.
var arrangementCodes = map[Code]bool{
	ErrCodeInvalidTrackSpec:             true,
	ErrCodeInvalidColumnCount:           true,
	ErrCodeSpanExceedsGridWidth:         true,
	ErrCodeOverlappingExplicitPlacement: true,
	ErrCodeInsufficientSpace:            true,
}

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

// IsArrangement reports whether err was raised by the grid engine because of
// an invalid grid configuration.
func IsArrangement(err error) bool {
	return arrangementCodes[GetCode(err)]
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

// HTTPStatus maps an error code to the HTTP status the API responds with.
func HTTPStatus(code Code) int {
	switch {
	case arrangementCodes[code]:
		return http.StatusUnprocessableEntity
	case code == ErrCodeInvalidInput, code == ErrCodeInvalidFormat,
		code == ErrCodeInvalidDocument, code == ErrCodeInvalidID:
		return http.StatusBadRequest
	case code == ErrCodeNotFound, code == ErrCodeGridNotFound, code == ErrCodeFileNotFound:
		return http.StatusNotFound
	case code == ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
