package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"in flight", fmt.Errorf("submit: %w", ErrSubmitInFlight), http.StatusConflict},
		{"validation", ValidationError(map[string]string{"email": "bad"}), http.StatusUnprocessableEntity},
		{"precondition", MissingPrecondition("no token"), http.StatusBadRequest},
		{"wrapped precondition", fmt.Errorf("open: %w", MissingPrecondition("no token")), http.StatusBadRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrap: %w", SubmissionFailure("Login Failed", "nope"))
	assert.True(t, IsKind(err, KindSubmission))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(errors.New("x"), KindSubmission))
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := ValidationError(map[string]string{"password": "short", "email": "bad"})
	assert.Equal(t, "validation (422): email: bad; password: short", err.Error())
}
