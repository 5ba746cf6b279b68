package apperr

import (
	"errors"
	"net/http"
)

// Error kinds shared by the services. Callers wrap them with fmt.Errorf("...: %w", ...)
// and the HTTP layer maps them back with errors.Is.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrStoreIO         = errors.New("store unavailable")
	ErrTooManyRequests = errors.New("too many requests")
	ErrAlreadyInCart   = errors.New("item is already in your cart")
)

// Status returns the HTTP status code for err.
// Duplicate names and referenced categories are reported as 400, matching the
// behaviour existing admin clients rely on.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyInCart):
		return http.StatusConflict
	case errors.Is(err, ErrConflict), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
