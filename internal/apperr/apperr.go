// Package apperr defines the request-level error taxonomy shared by all
// handlers and orchestrators. Every failure a handler can surface maps to
// exactly one Kind, and each Kind maps to exactly one HTTP status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping.
type Kind int

// Error kinds, ordered roughly by how early in a request they occur.
const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindUnauthorized
	KindValidation
	KindConflict
	KindNotFound
)

// Error carries a Kind alongside a client-safe message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
// POST: returns the client-safe message
func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
// PRE: msg is a client-safe description of the violated rule
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and client-safe message to an underlying error.
// PRE: err is non-nil
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation creates a KindValidation error from a domain error,
// reusing the domain error's message as the client-safe text.
// PRE: err is non-nil
func Validation(err error) *Error {
	return &Error{Kind: KindValidation, Msg: err.Error(), Err: err}
}

// KindOf extracts the Kind from an error chain.
// POST: returns KindUnknown if no *Error is found in the chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error chain to an HTTP status code.
// POST: unknown errors map to 500
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
