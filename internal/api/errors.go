package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failures a caller can branch on.
type Kind int

const (
	KindServer Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindNotUnique
	KindServiceUnavailable
	KindNetwork
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindNotUnique:
		return "not unique"
	case KindServiceUnavailable:
		return "service unavailable"
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	default:
		return "server error"
	}
}

// Error is returned by every Client call that did not produce a 2xx.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status; 0 when the request never completed
	Message string // server supplied message, if any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrBadRequest         = &Error{Kind: KindBadRequest}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrNotUnique          = &Error{Kind: KindNotUnique}
	ErrServer             = &Error{Kind: KindServer}
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrNetwork            = &Error{Kind: KindNetwork}
	ErrValidation         = &Error{Kind: KindValidation}
)

// KindFromStatus maps an HTTP status to its Kind.
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindNotUnique
	default:
		return KindServer
	}
}

// FromStatus builds the Error for a non-2xx response.
func FromStatus(status int, message string) *Error {
	return &Error{Kind: KindFromStatus(status), Status: status, Message: message}
}

// Invalid wraps a client side validation failure.
func Invalid(err error) *Error {
	return &Error{Kind: KindValidation, Err: err}
}

// KindOf extracts the Kind of err, reporting false for errors outside the taxonomy.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsCanceled reports a request abandoned by its caller. It is not a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
