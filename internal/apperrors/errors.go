package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error into one of the failure categories the API exposes.
type Kind int

const (
	KindValidation Kind = iota // malformed or out-of-policy input
	KindConflict               // uniqueness violation
	KindInvalidCredentials     // bad login or bad/expired single-use token
	KindUnauthorized           // missing or invalid session token
	KindForbidden              // valid session, policy-blocked action
	KindNotFound
	KindInternal
)

// statusByKind is the single mapping from error kind to HTTP status.
// InvalidCredentials deliberately maps to 400, matching the login and
// reset-token failure contract.
var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindConflict:           http.StatusBadRequest,
	KindInvalidCredentials: http.StatusBadRequest,
	KindUnauthorized:       http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindInternal:           http.StatusInternalServerError,
}

// Error is an expected failure with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func InvalidCredentials(message string) *Error {
	return New(KindInvalidCredentials, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Status resolves an error to the HTTP status and message to send to the
// client. Anything that is not an *Error is an unexpected failure and renders
// as a generic server error so internal detail never leaks.
func Status(err error) (int, string) {
	var appErr *Error
	if errors.As(err, &appErr) {
		if status, ok := statusByKind[appErr.Kind]; ok {
			return status, appErr.Message
		}
	}
	return http.StatusInternalServerError, "Server error"
}
