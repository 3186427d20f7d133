package httpx

import (
	"errors"
	"net/http"

	"github.com/askhub/askhub/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unrecognized errors surface as an opaque internal error.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrEmailTaken):
		Problem(w, http.StatusConflict, "Email Taken", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusBadRequest, "Invalid Credentials", err.Error())
	case errors.Is(err, shared.ErrInvalidToken):
		Problem(w, http.StatusBadRequest, "Invalid Token", err.Error())
	case errors.Is(err, shared.ErrUnverified):
		Problem(w, http.StatusUnauthorized, "Email Not Verified", err.Error())
	case errors.Is(err, shared.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrWrongPassword):
		Problem(w, http.StatusBadRequest, "Wrong Password", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
