// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common application errors.
var (
	// Gateway errors.
	ErrNotFound = errors.New("not found")

	// Workflow errors.
	ErrBusy            = errors.New("operation in progress")
	ErrNotOpen         = errors.New("editor is not open")
	ErrNothingToExport = errors.New("nothing to export")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports user input that fails a local constraint. No
// network call is made when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for the named field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NetworkError reports a gateway call that did not complete, including
// timeouts and non-success responses.
type NetworkError struct {
	Err error
	Op  string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ExportError reports that no spreadsheet file could be produced.
type ExportError struct {
	Err   error
	Stage string
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ShareUnavailable means the exported file exists but no share target took
// it. It is a notice, not an export failure.
type ShareUnavailable struct {
	Path string
}

func (e *ShareUnavailable) Error() string {
	return "no share target available; file saved at " + e.Path
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNetwork reports whether err is, or wraps, a NetworkError.
func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}

// Describe turns any workflow error into the one-line message shown to the
// user.
func Describe(err error) string {
	var (
		validation *ValidationError
		network    *NetworkError
		export     *ExportError
		user       *UserError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &user):
		return user.UserMessage
	case errors.As(err, &validation):
		return "Check " + validation.Field + ": " + validation.Message
	case errors.As(err, &network):
		if network.Timeout() {
			return "The server did not answer in time (" + network.Op + ")"
		}
		return "Could not reach the server (" + network.Op + ")"
	case errors.Is(err, ErrNothingToExport):
		return "Nothing to export"
	case errors.As(err, &export):
		return "Export failed"
	case errors.Is(err, ErrBusy):
		return "Still working, please wait"
	default:
		return err.Error()
	}
}
