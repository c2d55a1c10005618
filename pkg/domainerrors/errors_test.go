package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", New(CodeBadRequest, "missing field"), http.StatusBadRequest},
		{"signature", New(CodeSignature, "bad signature"), http.StatusBadRequest},
		{"not found", New(CodeNotFound, "no session"), http.StatusNotFound},
		{"internal", New(CodeInternal, "boom"), http.StatusInternalServerError},
		{"upstream with status", Upstream(422, "invalid phone", nil), 422},
		{"upstream without status", &Error{Code: CodeUpstream, Message: "unreachable"}, http.StatusInternalServerError},
		{"uncoded error", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsMatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeNotFound, "no session"))
	assert.True(t, Is(err, CodeNotFound))
	assert.False(t, Is(err, CodeBadRequest))
	assert.False(t, Is(errors.New("plain"), CodeInternal))
}

func TestFromPreservesCodedErrors(t *testing.T) {
	original := Upstream(502, "bad gateway", map[string]string{"field": "detail"})
	got := From(fmt.Errorf("wrapped: %w", original))
	assert.Equal(t, original, got)

	plain := From(errors.New("plain"))
	assert.Equal(t, CodeInternal, plain.Code)
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeUpstream, "registrar unreachable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "registrar unreachable")
	assert.Contains(t, err.Error(), "connection refused")
}
