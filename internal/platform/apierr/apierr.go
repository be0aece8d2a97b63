package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes carried in the "code" field of the error envelope.
const (
	CodeInvalidRequest      = "invalid_request"
	CodeUpstreamUnreachable = "upstream_unreachable"
	CodeVersionConflict     = "version_conflict"
	CodeNotFound            = "not_found"
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeInternal            = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, errors.New(msg))
}

func Conflict(err error) *Error {
	return New(http.StatusConflict, CodeVersionConflict, err)
}

func Upstream(err error) *Error {
	return New(http.StatusBadGateway, CodeUpstreamUnreachable, err)
}

// From maps an arbitrary error to an *Error. Errors that already carry a
// status pass through; anything else becomes a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}
