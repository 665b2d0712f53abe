package handler

import (
	"errors"
	"net/http"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status code and a stable machine-readable
// key. Message, when set, is the client-facing text.
type HTTPError struct {
	Code    int
	Key     string
	Message string
}

func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Key
}

// WithMessage returns a copy of e with a client-facing message.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

func NewHTTPError(code int, key, message string) HTTPError {
	return HTTPError{Code: code, Key: key, Message: message}
}

var (
	ErrBadRequest      = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized    = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden       = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound        = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict        = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrTooManyRequests = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternal        = HTTPError{Code: http.StatusInternalServerError, Key: "internal_error", Message: "internal server error"}
)
