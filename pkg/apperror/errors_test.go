package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"app error carries its code", New(http.StatusTooManyRequests, "slow down", ErrRateLimitExceeded), http.StatusTooManyRequests},
		{"not found helper", NotFound("category not found"), http.StatusNotFound},
		{"conflict helper", Conflict("name already exists"), http.StatusBadRequest},
		{"invalid operation helper", InvalidOperation("cannot delete category with products"), http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("loading user: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"forbidden sentinel", ErrForbidden, http.StatusForbidden},
		{"invalid input sentinel", ErrInvalidInput, http.StatusBadRequest},
		{"unknown error falls back to 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NotFound("category not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "category not found", err.Error())
}
