package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden wrapped", fmt.Errorf("token expired: %w", ErrForbidden), http.StatusForbidden},
		{"not found wrapped", fmt.Errorf("product 12: %w", ErrNotFound), http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusBadRequest},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"cart duplicate", ErrAlreadyInCart, http.StatusConflict},
		{"rate limited", ErrTooManyRequests, http.StatusTooManyRequests},
		{"store", ErrStoreIO, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}
