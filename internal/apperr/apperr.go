// Package apperr defines application-raised errors that carry their own HTTP
// status and caller-facing message.
package apperr

import (
	"errors"
	"net/http"
)

// Error is an application error whose Status and Message are returned to the
// caller verbatim. Err is kept for logs only.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap attaches a cause that is logged but never sent to the caller.
func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }

func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HasStatus reports whether err carries an application status equal to status.
func HasStatus(err error, status int) bool {
	ae, ok := As(err)
	return ok && ae.Status == status
}
