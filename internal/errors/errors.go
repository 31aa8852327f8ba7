// Package errors provides centralized error definitions and error handling
// utilities for the discourse codebase. It defines the failure kinds produced
// by agent invocations, sentinel errors for run termination, and error
// classification helpers used by the recovery policy.
//
// # Error Kinds
//
// Invocation failures come in three kinds:
//   - TimeoutError: the backend call exceeded its per-turn timeout
//   - BackendError: the backend exited non-zero or reported an error flag
//   - MalformedOutputError: the backend produced output that could not be
//     decoded; the raw payload is preserved to a debug artifact first
//
// All three are surfaced to the human recovery prompt (retry/skip/abort).
// Termination sentinels:
//   - ErrUserAbort: the human chose abort at the recovery prompt
//   - ErrInterrupted: the run was cancelled externally (e.g. SIGINT)
//
// # Usage
//
//	if errors.Is(err, errors.ErrTimeout) { ... }
//
//	var backendErr *errors.BackendError
//	if errors.As(err, &backendErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Invocation-related sentinel errors
var (
	// ErrTimeout indicates that a backend invocation timed out.
	ErrTimeout = New("invocation timed out")
	// ErrBackendFailure indicates that the backend exited non-zero or
	// reported an explicit error flag.
	ErrBackendFailure = New("backend failure")
	// ErrMalformedOutput indicates that the backend produced output that
	// could not be decoded.
	ErrMalformedOutput = New("malformed backend output")
)

// Run-termination sentinel errors
var (
	// ErrUserAbort indicates the human operator chose to abort the run.
	ErrUserAbort = New("aborted by user")
	// ErrInterrupted indicates the run was cancelled by an external
	// interrupt rather than an explicit abort choice.
	ErrInterrupted = New("run interrupted")
)

// -----------------------------------------------------------------------------
// Invocation Error Types
// -----------------------------------------------------------------------------

// TimeoutError represents a backend invocation that exceeded its timeout.
//
// Example:
//
//	err := errors.NewTimeoutError("claude invocation", 300*time.Second)
//	fmt.Println(err) // "invocation timed out: claude invocation (timeout: 5m0s)"
type TimeoutError struct {
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{Operation: operation, Duration: duration}
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("invocation timed out: %s (timeout: %s)", e.Operation, e.Duration)
}

// Is reports whether this error matches the target error.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// BackendError represents a backend process failure: a non-zero exit status
// or an explicit error flag in the result event.
type BackendError struct {
	ExitCode int    // -1 when the process could not be started
	Stderr   string // captured stderr, may be empty
	Message  string // backend-reported error text, may be empty
}

// Error returns the formatted error message.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend failure: %s", e.Message)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("backend exited with code %d\nstderr: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("backend exited with code %d", e.ExitCode)
}

// Is reports whether this error matches the target error.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackendFailure
}

// MalformedOutputError represents backend output that could not be decoded.
// The raw payload is written to DumpPath before this error is surfaced so it
// can be inspected offline.
type MalformedOutputError struct {
	DumpPath string
	Cause    error
}

// Error returns the formatted error message.
func (e *MalformedOutputError) Error() string {
	if e.DumpPath != "" {
		return fmt.Sprintf("invalid JSON from backend (raw output saved to %s): %v", e.DumpPath, e.Cause)
	}
	return fmt.Sprintf("invalid JSON from backend: %v", e.Cause)
}

// Unwrap returns the underlying decode error.
func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed if the same invocation is attempted again. Timeouts and
// backend failures are transient; malformed output is not (re-decoding the
// same payload cannot succeed), though the recovery prompt still offers
// retry since a fresh invocation produces fresh output.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Is(err, ErrTimeout) || Is(err, ErrBackendFailure)
}

// IsTermination returns true if the error is a run-termination sentinel
// (user abort or external interrupt) rather than an invocation failure.
func IsTermination(err error) bool {
	if err == nil {
		return false
	}
	return Is(err, ErrUserAbort) || Is(err, ErrInterrupted)
}

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to collect closing statement")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
