package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := New(ErrCodeInvalidInput, "unknown format %q", "png")
	assert.Equal(t, ErrCodeInvalidInput, err.Code)
	assert.Equal(t, `unknown format "png"`, err.Message)
	assert.Equal(t, `INVALID_INPUT: unknown format "png"`, err.Error())

	wrapped := Wrap(ErrCodeNetwork, errors.New("connection refused"), "GET %s", "/knowledge/graph")
	assert.Equal(t, "NETWORK_ERROR: GET /knowledge/graph: connection refused", wrapped.Error())
}

func TestWrapKeepsChain(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("fetch kb-1: %w", Wrap(ErrCodeTimeout, cause, "backend"))

	assert.ErrorIs(t, err, cause)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Same(t, cause, e.Unwrap())
}

func TestCodeLookups(t *testing.T) {
	nested := Wrap(ErrCodeUpstream, New(ErrCodeInvalidPayload, "inner"), "outer")
	tests := []struct {
		name string
		err  error
		code Code
		msg  string
	}{
		{"coded", New(ErrCodeInvalidPayload, "bad nodes"), ErrCodeInvalidPayload, "bad nodes"},
		{"outermost code wins", nested, ErrCodeUpstream, "outer"},
		{"wrapped by fmt", fmt.Errorf("ctx: %w", New(ErrCodeNotFound, "kb-9")), ErrCodeNotFound, "kb-9"},
		{"plain", errors.New("plain error"), "", "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.msg, UserMessage(tt.err))
			if tt.code != "" {
				assert.True(t, Is(tt.err, tt.code))
			}
			assert.False(t, Is(tt.err, ErrCodeUnsupported))
		})
	}

	assert.Equal(t, Code(""), GetCode(nil))
	assert.False(t, Is(nil, ErrCodeInvalidInput))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidPayload, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidPath, "x"), http.StatusBadRequest},
		{Wrap(ErrCodeNotFound, errors.New("gone"), "kb"), http.StatusNotFound},
		{New(ErrCodeUnauthorized, "x"), http.StatusUnauthorized},
		{New(ErrCodeNetwork, "x"), http.StatusBadGateway},
		{New(ErrCodeUpstream, "x"), http.StatusBadGateway},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{New(ErrCodeInvalidConfig, "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}
