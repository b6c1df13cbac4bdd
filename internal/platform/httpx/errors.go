package httpx

import (
	"errors"
	"net/http"

	"github.com/boutique-shop/boutique-shop/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Authentication failures share a uniform 401 so the denial path never
// distinguishes a missing user from a bad password or a store hiccup.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.ErrNotFound.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", shared.ErrDuplicate.Error())
	case errors.Is(err, shared.ErrPermissionDenied):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrMissingCredentials),
		errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrInvalidToken),
		errors.Is(err, shared.ErrTokenSuperseded):
		Problem(w, http.StatusUnauthorized, "Unauthorized", publicAuthDetail(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// publicAuthDetail returns the caller-visible detail for an auth failure.
// Token-superseded keeps its message so clients know to re-login; everything
// else collapses to the bare sentinel text.
func publicAuthDetail(err error) string {
	switch {
	case errors.Is(err, shared.ErrTokenSuperseded):
		return shared.ErrTokenSuperseded.Error()
	case errors.Is(err, shared.ErrMissingCredentials):
		return shared.ErrMissingCredentials.Error()
	case errors.Is(err, shared.ErrInvalidToken):
		return shared.ErrInvalidToken.Error()
	default:
		return shared.ErrInvalidCredentials.Error()
	}
}
