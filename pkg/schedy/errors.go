package schedy

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	cbhttpmiddleware "github.com/schedyio/schedy/pkg/clientbase/http/middleware"
	lhttp "github.com/schedyio/schedy/pkg/http"
)

// Error kinds. Every error returned by a request is a *Error whose Kind
// matches one of these with errors.Is.
var (
	ErrTransport         = errors.New("transport error")
	ErrAuthentication    = errors.New("authentication failed")
	ErrReauthenticate    = errors.New("reauthentication required")
	ErrUnsafeUpdate      = errors.New("unsafe update")
	ErrClientRequest     = errors.New("client request error")
	ErrResourceExists    = fmt.Errorf("%w: resource already exists", ErrClientRequest)
	ErrNotFound          = fmt.Errorf("%w: resource not found", ErrClientRequest)
	ErrNoTrial           = errors.New("no trial available")
	ErrServer            = errors.New("server error")
	ErrUnhandledResponse = errors.New("unhandled response")

	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingETag       = errors.New("no entity tag to condition the update on")
)

const maxMessageBody = 150

// Error carries the HTTP status code and raw body of a failed request along
// with its kind.
type Error struct {
	Kind error
	Code int
	Body string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != 0 && e.Err == nil {
		return httpMessage(e.Code, e.Body)
	}

	msg := "schedy error"
	if e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Code)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func httpMessage(code int, body string) string {
	msg := strings.ReplaceAll(body, "\r", "")
	msg = strings.TrimRight(msg, "\n")
	if runes := []rune(msg); len(runes) == 0 {
		msg = "<No server message>"
	} else if len(runes) > maxMessageBody {
		msg = string(runes[:maxMessageBody-3]) + "..."
	}
	msg = strings.ReplaceAll(msg, "\n", "\n> ")
	return fmt.Sprintf("HTTP Error %d:\n> %s", code, msg)
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// kindForStatus classifies a response status. OK statuses return nil.
func kindForStatus(code int) error {
	switch {
	case code == http.StatusOK, code == http.StatusCreated, code == http.StatusNoContent:
		return nil
	case code == http.StatusUnauthorized:
		return ErrReauthenticate
	case code == http.StatusForbidden:
		return ErrAuthentication
	case code == http.StatusPreconditionFailed:
		return ErrUnsafeUpdate
	case code == http.StatusConflict:
		return ErrResourceExists
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 400 && code < 500:
		return ErrClientRequest
	case code >= 500 && code < 600:
		return ErrServer
	}
	return ErrUnhandledResponse
}

// fromHttpError converts a transport failure into a *Error.
func fromHttpError(herr *lhttp.HttpError) *Error {
	if herr == nil {
		return nil
	}
	switch {
	case errors.Is(herr.Err, cbhttpmiddleware.ErrMalformedBody):
		return &Error{Kind: ErrServer, Code: herr.Code, Err: herr.Err}
	case herr.IsTransport():
		return &Error{Kind: ErrTransport, Err: herr.Err}
	}
	return &Error{Kind: kindForStatus(herr.Code), Code: herr.Code, Body: herr.Message, Err: herr.Err}
}

// unexpectedStatus is used for 2xx statuses the protocol does not define.
func unexpectedStatus(code int) *Error {
	if kindForStatus(code) == nil {
		return nil
	}
	return &Error{Kind: ErrUnhandledResponse, Code: code, Err: fmt.Errorf("unexpected status %d", code)}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrResourceExists)
}
