package domain

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes domain errors per the failure taxonomy.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a referenced record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidState indicates an operation was attempted against a
	// session in the wrong lifecycle state.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"

	// ErrCodeForbidden indicates the acting user may not perform the
	// operation (non-member refresh, non-host start, bad invite code).
	ErrCodeForbidden ErrorCode = "FORBIDDEN"

	// ErrCodeIntegrationFailure indicates one judge's fetch failed. Always
	// isolated per platform; never aborts the other platform's round.
	ErrCodeIntegrationFailure ErrorCode = "INTEGRATION_FAILURE"

	// ErrCodeLockTimeout indicates the store lock could not be acquired
	// within the bounded retry budget. Fatal for the calling operation.
	ErrCodeLockTimeout ErrorCode = "LOCK_TIMEOUT"

	// ErrCodeCorruptDocument indicates the persisted document failed to
	// parse. Fatal; no repair beyond schema normalization is attempted.
	ErrCodeCorruptDocument ErrorCode = "CORRUPT_DOCUMENT"

	// ErrCodeNotEnoughCandidates indicates candidate selection could not
	// satisfy a problem spec or the requested count.
	ErrCodeNotEnoughCandidates ErrorCode = "NOT_ENOUGH_CANDIDATES"

	// ErrCodeInvalidInput indicates a malformed creation request
	// (non-positive duration or count, no platform selected).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error is a categorized domain error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// NotFound constructs a NOT_FOUND error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidState constructs an INVALID_STATE error.
func InvalidState(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Forbidden constructs a FORBIDDEN error.
func Forbidden(format string, args ...any) *Error {
	return &Error{Code: ErrCodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput constructs an INVALID_INPUT error.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a
// domain error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
