// Package errors provides structured error types for zonemap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or option validation failures
//   - MISSING_*: Required input is absent
//   - NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidOptions, "size scale %v out of range", s)
//	if errors.Is(err, errors.ErrCodeInvalidOptions) {
//	    // Handle validation error
//	}
//
//	// Missing table columns carry the list of absent fields
//	var mc *errors.MissingColumnsError
//	if stderrors.As(err, &mc) {
//	    fmt.Println(mc.Columns)
//	}
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
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidOptions Code = "INVALID_OPTIONS"
	ErrCodeInvalidZones   Code = "INVALID_ZONES"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Table shape errors
	ErrCodeMissingColumns Code = "MISSING_COLUMNS"

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
// It unwraps the error chain looking for an *Error or a *MissingColumnsError
// with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var mc *MissingColumnsError
	if errors.As(err, &mc) {
		return mc.Code()
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
	var mc *MissingColumnsError
	if errors.As(err, &mc) {
		return mc.Message()
	}
	return err.Error()
}

// MissingColumnsError reports required table columns that are absent.
// Columns holds canonical field names (e.g. "magnitude"), in the order the
// table contract lists them.
type MissingColumnsError struct {
	Columns []string
}

// Error implements the error interface.
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeMissingColumns, e.Message())
}

// Message returns the error text without the code prefix.
func (e *MissingColumnsError) Message() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// Code returns the error code for this error type.
func (e *MissingColumnsError) Code() Code {
	return ErrCodeMissingColumns
}

// Has reports whether the named column is among the missing ones.
func (e *MissingColumnsError) Has(column string) bool {
	for _, c := range e.Columns {
		if c == column {
			return true
		}
	}
	return false
}
