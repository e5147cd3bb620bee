package schedy

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cbhttpmiddleware "github.com/schedyio/schedy/pkg/clientbase/http/middleware"
	lhttp "github.com/schedyio/schedy/pkg/http"
)

func TestHttpMessage(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"empty", 500, "", "HTTP Error 500:\n> <No server message>"},
		{"only newlines", 500, "\r\n\n", "HTTP Error 500:\n> <No server message>"},
		{"single line", 404, "no such project\n", "HTTP Error 404:\n> no such project"},
		{"multi line", 400, "line one\r\nline two\r\n", "HTTP Error 400:\n> line one\n> line two"},
		{"exact limit", 502, strings.Repeat("x", 150), "HTTP Error 502:\n> " + strings.Repeat("x", 150)},
		{"truncated", 502, strings.Repeat("x", 151), "HTTP Error 502:\n> " + strings.Repeat("x", 147) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &Error{Kind: kindForStatus(tt.code), Code: tt.code, Body: tt.body}
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusOK, nil},
		{http.StatusCreated, nil},
		{http.StatusNoContent, nil},
		{http.StatusAccepted, ErrUnhandledResponse},
		{http.StatusMovedPermanently, ErrUnhandledResponse},
		{http.StatusUnauthorized, ErrReauthenticate},
		{http.StatusForbidden, ErrAuthentication},
		{http.StatusPreconditionFailed, ErrUnsafeUpdate},
		{http.StatusConflict, ErrResourceExists},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrClientRequest},
		{http.StatusTeapot, ErrClientRequest},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusServiceUnavailable, ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, kindForStatus(tt.code))
		})
	}
}

func TestClientRequestFamily(t *testing.T) {
	assert.ErrorIs(t, ErrResourceExists, ErrClientRequest)
	assert.ErrorIs(t, ErrNotFound, ErrClientRequest)
	assert.NotErrorIs(t, ErrServer, ErrClientRequest)

	err := &Error{Kind: ErrNotFound, Code: 404}
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConflict(err))
	assert.ErrorIs(t, err, ErrClientRequest)
}

func TestFromHttpError(t *testing.T) {
	transport := fromHttpError(&lhttp.HttpError{Err: errors.New("connection refused")})
	assert.ErrorIs(t, transport, ErrTransport)
	assert.Zero(t, transport.Code)
	assert.Contains(t, transport.Error(), "connection refused")

	status := fromHttpError(lhttp.NewConflict("taken"))
	assert.ErrorIs(t, status, ErrResourceExists)
	assert.Equal(t, "taken", status.Body)

	malformed := fromHttpError(&lhttp.HttpError{Code: http.StatusOK, Err: cbhttpmiddleware.ErrMalformedBody})
	assert.ErrorIs(t, malformed, ErrServer)
	assert.ErrorIs(t, malformed, cbhttpmiddleware.ErrMalformedBody)

	assert.Nil(t, fromHttpError(nil))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := newError(ErrUnhandledResponse, "decoding: %w", cause)
	require.ErrorIs(t, err, ErrUnhandledResponse)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "unhandled response: decoding: boom", err.Error())
}
