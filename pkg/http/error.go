package lhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// HttpError is either a connectivity failure (Err set) or a non-2xx response
// (Code, Message and Header set).
type HttpError struct {
	Code    int
	Message string
	Header  http.Header
	Err     error
}

func FromError(err error) *HttpError {
	if err == nil {
		return nil
	}

	var herr *HttpError
	if errors.As(err, &herr) {
		return herr
	}

	return &HttpError{Err: err}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("got code %d and message \"%s\"", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func (e *HttpError) Clone() *HttpError {
	if e == nil {
		return nil
	}
	return &HttpError{
		Code:    e.Code,
		Message: e.Message,
		Header:  e.Header.Clone(),
		Err:     e.Err,
	}
}

// IsTransport is true when no response was received.
func (e *HttpError) IsTransport() bool {
	return e != nil && e.Err != nil && e.Code == 0
}

// IsCanceled is true when the failure comes from the caller's context.
func (e *HttpError) IsCanceled() bool {
	return e != nil && (errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded))
}

// IsTransient reports failures worth retrying: lost connections and gateway
// errors.
func (e *HttpError) IsTransient() bool {
	if e == nil || e.IsCanceled() {
		return false
	}
	if e.IsTransport() {
		return true
	}
	switch e.Code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func NewNotFound(message string) *HttpError {
	return &HttpError{Code: http.StatusNotFound, Message: message}
}

func NewConflict(message string) *HttpError {
	return &HttpError{Code: http.StatusConflict, Message: message}
}

func NewPreconditionFailed(message string) *HttpError {
	return &HttpError{Code: http.StatusPreconditionFailed, Message: message}
}

func NewUnauthorized(message string) *HttpError {
	return &HttpError{Code: http.StatusUnauthorized, Message: message}
}

func NewForbidden() *HttpError {
	return &HttpError{Code: http.StatusForbidden, Message: "Forbidden"}
}
