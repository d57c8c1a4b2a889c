// Package apperr defines the error kinds returned by domain operations and
// their HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindBadRequest   Kind = "BAD_REQUEST"
	KindConflict     Kind = "CONFLICT"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindInternal     Kind = "INTERNAL_SERVER_ERROR"
)

// Error is a domain failure carrying a machine code and a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	return StatusOf(e.Kind)
}

func StatusOf(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "You are not authenticated"
	}
	return New(KindUnauthorized, message)
}

func Forbidden(message string) *Error {
	if message == "" {
		message = "You don't have permission to access"
	}
	return New(KindForbidden, message)
}

func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return New(KindNotFound, message)
}

func BadRequest(message string) *Error {
	if message == "" {
		message = "Bad request"
	}
	return New(KindBadRequest, message)
}

func Conflict(message string) *Error {
	if message == "" {
		message = "Resource already exists"
	}
	return New(KindConflict, message)
}

// Validation wraps field-level failures produced by request parsing.
func Validation(message string, details any) *Error {
	if message == "" {
		message = "Validation error"
	}
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
