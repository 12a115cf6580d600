// Package serr defines the HTTP-facing error values the subscription
// server's handlers return: a status code, a message safe to send to
// the caller, and an optional wrapped technical cause for logging. It
// plays the same role for server/ that internal/perrors plays for
// predicate diagnostics, following the teacher's own split between a
// core-level error package (internal/tqerrors) and a server-facing one.
package serr

import (
	"fmt"
	"net/http"
)

// HTTPError is a server-facing error carrying both the status code and
// message to send to the client and, optionally, a wrapped technical
// cause meant for logs rather than the response body.
type httpError struct {
	status  int
	client  string
	wrapped error
}

func (e *httpError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s", e.client, e.wrapped)
	}
	return e.client
}

func (e *httpError) Unwrap() error { return e.wrapped }

// Status returns the HTTP status code this error should be reported
// with.
func (e *httpError) Status() int { return e.status }

// ClientMessage returns the message safe to include in the response
// body, omitting any wrapped technical detail.
func (e *httpError) ClientMessage() string { return e.client }

// New returns an error reporting status with the given client-facing
// message.
func New(status int, clientFormat string, a ...any) error {
	return &httpError{status: status, client: fmt.Sprintf(clientFormat, a...)}
}

// Wrap returns an error reporting status with a client-facing message,
// wrapping cause for logging.
func Wrap(cause error, status int, clientFormat string, a ...any) error {
	return &httpError{status: status, client: fmt.Sprintf(clientFormat, a...), wrapped: cause}
}

// NotFound is a shorthand for New(http.StatusNotFound, ...).
func NotFound(clientFormat string, a ...any) error {
	return New(http.StatusNotFound, clientFormat, a...)
}

// BadRequest is a shorthand for New(http.StatusBadRequest, ...).
func BadRequest(clientFormat string, a ...any) error {
	return New(http.StatusBadRequest, clientFormat, a...)
}

// Unauthorized is a shorthand for New(http.StatusUnauthorized, ...).
func Unauthorized(clientFormat string, a ...any) error {
	return New(http.StatusUnauthorized, clientFormat, a...)
}

// Internal wraps cause as a 500 with a generic client-facing message,
// so internal details are never leaked to the caller.
func Internal(cause error) error {
	return Wrap(cause, http.StatusInternalServerError, "an internal server error occurred")
}

// AsHTTPError reports whether err (or something it wraps) is an
// HTTPError, returning its status and client message if so.
func AsHTTPError(err error) (status int, message string, ok bool) {
	he, ok := err.(*httpError)
	if !ok {
		return 0, "", false
	}
	return he.status, he.client, true
}
