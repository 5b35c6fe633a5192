package types

import (
	"errors"
	"net/http"

	"postboard/shared"
)

type ErrorKind string

const (
	KindAuth               ErrorKind = "auth"
	KindValidation         ErrorKind = "validation"
	KindStore              ErrorKind = "store"
	KindAuthorization      ErrorKind = "authorization"
	KindNotFound           ErrorKind = "not_found"
	KindListingUnavailable ErrorKind = "listing_unavailable"
)

// Error is the result of a failed operation, classified so the boundary that
// recovers it can pick a message and status. Msg is what the caller renders; for
// store failures it already includes the underlying message.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
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

func (e *Error) Unwrap() error {
	return e.Err
}

func NewAuthError(msg string) *Error {
	return &Error{Kind: KindAuth, Msg: msg}
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func NewAuthorizationError(msg string) *Error {
	return &Error{Kind: KindAuthorization, Msg: msg}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// NewStoreError passes the underlying message through: "<msg>: <err>".
func NewStoreError(msg string, err error) *Error {
	full := msg
	if err != nil {
		full = msg + ": " + err.Error()
	}
	return &Error{Kind: KindStore, Msg: full, Err: err}
}

func NewListingUnavailableError(err error) *Error {
	msg := "Error loading posts"
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{Kind: KindListingUnavailable, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

var statusByKind = map[ErrorKind]int{
	KindAuth:               http.StatusUnauthorized,
	KindValidation:         http.StatusBadRequest,
	KindStore:              http.StatusBadGateway,
	KindAuthorization:      http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindListingUnavailable: http.StatusBadGateway,
}

var apiTypeByKind = map[ErrorKind]shared.ApiErrorType{
	KindAuth:               shared.ApiErrorTypeAuth,
	KindValidation:         shared.ApiErrorTypeValidation,
	KindStore:              shared.ApiErrorTypeStore,
	KindAuthorization:      shared.ApiErrorTypeAuthorization,
	KindNotFound:           shared.ApiErrorTypeNotFound,
	KindListingUnavailable: shared.ApiErrorTypeListingUnavailable,
}

func ToApiError(err error) *shared.ApiError {
	var e *Error
	if !errors.As(err, &e) {
		return &shared.ApiError{
			Type:   shared.ApiErrorTypeOther,
			Status: http.StatusInternalServerError,
			Msg:    err.Error(),
		}
	}

	return &shared.ApiError{
		Type:   apiTypeByKind[e.Kind],
		Status: statusByKind[e.Kind],
		Msg:    e.Error(),
	}
}
