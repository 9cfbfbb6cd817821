// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Ledger errors
	ErrMalformedLedger = &Error{Code: "MALFORMED_LEDGER", Message: "trade log violates entry-before-exit ordering"}
	ErrNoData          = &Error{Code: "NO_DATA", Message: "no data available"}

	// Simulation errors
	ErrDivisionByZeroInDrawdown = &Error{Code: "DRAWDOWN_ZERO_PEAK", Message: "equity peak is zero or negative"}

	// Sweep errors
	ErrInvalidSweepRange = &Error{Code: "INVALID_SWEEP_RANGE", Message: "sweep range is empty or has a non-positive step"}

	// Storage errors
	ErrArtifactNotFound = &Error{Code: "ARTIFACT_NOT_FOUND", Message: "artifact not found"}
	ErrInvalidPath      = &Error{Code: "INVALID_PATH", Message: "artifact path escapes the archive root"}

	// Job errors
	ErrJobNotFound = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}

	// API errors
	ErrUnauthorized   = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "request body is invalid"}
	ErrTooManyJobs    = &Error{Code: "TOO_MANY_JOBS", Message: "job queue is full"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
