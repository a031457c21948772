// Package errors provides structured error types for the photonkit kernel.
//
// Every failure the kernel reports carries a machine-readable [Code] so that
// callers (generators, the CLI, the HTTP view) can branch on the error kind
// without string matching:
//
//   - INVALID_*: parameter or configuration validation failures
//   - GEOMETRY / PATH_DISCONTINUITY: shapes that cannot be built as requested
//   - PORT_*: connector contract violations
//   - IMMUTABLE_COMPONENT: mutation of a finalized component
//   - CACHE_COLLISION: two parameter sets claiming the same component name
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "radius must be > 0, got %g", r)
//	if errors.Is(err, errors.ErrCodeInvalidParameter) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeGeometry, origErr, "extruding %s", name)
//
// Errors are never recovered inside the kernel: construction is deterministic,
// so the only recovery path is the caller supplying corrected parameters.
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
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Geometry errors
	ErrCodeGeometry          Code = "GEOMETRY"
	ErrCodePathDiscontinuity Code = "PATH_DISCONTINUITY"

	// Composition errors
	ErrCodePortMismatch       Code = "PORT_MISMATCH"
	ErrCodePortNotFound       Code = "PORT_NOT_FOUND"
	ErrCodeImmutableComponent Code = "IMMUTABLE_COMPONENT"
	ErrCodeReferenceCycle     Code = "REFERENCE_CYCLE"

	// Cache errors
	ErrCodeCacheCollision Code = "CACHE_COLLISION"

	// Lookup errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeLayerNotFound Code = "LAYER_NOT_FOUND"

	// Regression errors
	ErrCodeGeometryChanged Code = "GEOMETRY_CHANGED"

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
// It unwraps the error chain looking for an *Error with a matching code,
// so an outer Wrap with a different code does not hide an inner match.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// IsGeometry reports whether err belongs to the geometry family
// (GEOMETRY or PATH_DISCONTINUITY).
func IsGeometry(err error) bool {
	return Is(err, ErrCodeGeometry) || Is(err, ErrCodePathDiscontinuity)
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
