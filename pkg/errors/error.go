// Package errors provides structured error handling with typed error codes.
//
// Error codes are grouped by subsystem:
//   - General errors (1-99)
//   - Validation and configuration errors (100-199): bad config, missing secrets, bad windows
//   - Data errors (200-299): missing bars, failed queries, artifact writes
//   - Indicator errors (300-399)
//   - Strategy errors (400-499): unknown policies, policy faults
//   - Trading and ledger errors (500-599): order failures, position bookkeeping
//   - Backtest errors (600-699)
//   - Market data errors (700-799)
//   - Engine and control errors (800-899): lifecycle transitions, worker crashes
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodePositionExists, "position already open for %s", key)
//	if errors.HasCode(err, errors.ErrCodePositionExists) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates an Error without a cause.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is forwards to the standard errors.Is so callers need one import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As forwards to the standard errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the outermost *Error in err's chain, or
// ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// CodeOf returns the innermost typed code in err's chain. The controller uses
// it to report what actually failed under a crash wrapper.
func CodeOf(err error) ErrorCode {
	code := ErrCodeUnknown

	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			break
		}

		code = e.Code
		err = e.Cause
	}

	return code
}
