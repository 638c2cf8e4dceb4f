package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"
	ErrSample  = "SAMPLE"  // a data source failed to read the OS
	ErrInput   = "INPUT"   // an input byte sequence could not be decoded
	ErrInit    = "INIT"    // a startup step failed
	ErrRuntime = "RUNTIME" // the main loop failed
	ErrSignal  = "SIGNAL"  // a signal could not be delivered to a process
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrRuntime code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrRuntime,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Code == code
	}
	return false
}

// ExitError carries a process exit code up to main without printing anything.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError for the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the exit code from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// Brief renders err on a single line as "CODE: message: cause", for log files.
// Errors that are not structured render as err.Error().
func Brief(err error) string {
	if err == nil {
		return ""
	}
	var rtErr *Error
	if !errors.As(err, &rtErr) {
		return err.Error()
	}
	msg := rtErr.Code + ": " + rtErr.Message
	if rtErr.Cause != nil {
		msg += ": " + Brief(rtErr.Cause)
	}
	return msg
}
