package domain

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindDuplicate         Kind = "duplicate"
	KindUnauthenticated   Kind = "unauthenticated"
	KindInvalidCredential Kind = "invalid_credential"
	KindUnauthorized      Kind = "unauthorized"
	KindNotFound          Kind = "not_found"
	KindRateLimited       Kind = "rate_limited"
	KindInternal          Kind = "internal"
)

// Status maps a failure kind to its HTTP status.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidCredential, KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind   Kind
	Msg    string
	Err    error
	Fields []FieldError
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(fields []FieldError) error {
	return &Error{Kind: KindValidation, Msg: "validation failed", Fields: fields}
}
func Duplicate(msg string) error         { return &Error{Kind: KindDuplicate, Msg: msg} }
func Unauthenticated(msg string) error   { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func InvalidCredential(msg string) error { return &Error{Kind: KindInvalidCredential, Msg: msg} }
func Unauthorized(msg string) error      { return &Error{Kind: KindUnauthorized, Msg: msg} }
func NotFound(msg string) error          { return &Error{Kind: KindNotFound, Msg: msg} }
func RateLimited(msg string) error       { return &Error{Kind: KindRateLimited, Msg: msg} }

// Internal hides err from clients; the cause stays reachable through errors.Unwrap for logs.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf reports the failure kind of err; unknown errors are internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
