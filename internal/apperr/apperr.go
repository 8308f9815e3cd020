// Package apperr defines the error kinds surfaced to API callers and their
// mapping to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidReference
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidReference:
		return "invalid_reference"
	default:
		return "unexpected"
	}
}

// HTTPStatus maps the kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidReference:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// UnexpectedMessage is the only text a caller sees for KindUnexpected.
const UnexpectedMessage = "Internal server error"

// Error carries a caller-safe message; Err keeps the internal cause for logs.
type Error struct {
	Kind    Kind
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

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) *Error       { return New(KindValidation, msg) }
func Unauthenticated(msg string) *Error  { return New(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error        { return New(KindForbidden, msg) }
func NotFound(msg string) *Error         { return New(KindNotFound, msg) }
func Conflict(msg string) *Error         { return New(KindConflict, msg) }
func InvalidReference(msg string) *Error { return New(KindInvalidReference, msg) }

// Unexpected wraps an internal failure. The cause is never shown to callers.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: UnexpectedMessage, Err: err}
}

// From converts any error into an *Error; unknown errors become Unexpected.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Unexpected(err)
}

// KindOf reports the kind of err, KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// PublicMessage is the text safe to put in a response body.
func (e *Error) PublicMessage() string {
	if e.Kind == KindUnexpected {
		return UnexpectedMessage
	}
	return e.Message
}
