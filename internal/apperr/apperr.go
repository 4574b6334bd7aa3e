// Package apperr is the error taxonomy shared by the auth core and the HTTP
// layer. Components wrap low-level failures (mongo, bcrypt, jwt, the OAuth
// wire) into one of the kinds below at their boundary; the HTTP layer maps a
// kind to a status code and a stable JSON body. Raw causes stay attached for
// server-side logging and errors.Is/As, and are never shown to clients.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindConflict      Kind = "conflict"
	KindUnauthorized  Kind = "unauthorized"
	KindConfiguration Kind = "configuration_error"
	KindOAuthExchange Kind = "oauth_exchange_error"
	KindUnknown       Kind = "unknown_error"
)

type Error struct {
	Kind    Kind
	Message string // safe for clients
	Err     error  // underlying cause, logs only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes two apperr values match when their kinds match, so callers can
// compare against a bare kind sentinel without caring about the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf classifies any error; non-apperr errors are KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the client-safe message for err, or a generic fallback.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error kind to the status the HTTP layer responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConfiguration, KindOAuthExchange, KindUnknown:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
