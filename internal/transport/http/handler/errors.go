package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vanishmail/internal/domain"
	"github.com/vanishmail/internal/pkg/validate"
)

// devMode controls whether unexpected errors leak their message in responses.
var devMode bool

// SetDevMode enables diagnostic 500 bodies. Called once from the router.
func SetDevMode(on bool) { devMode = on }

// httpError maps a domain error to an HTTP status. Unexpected errors are
// logged and surfaced as a generic 500.
func httpError(w http.ResponseWriter, err error) {
	var ve *validate.Error
	if errors.As(err, &ve) {
		writeError(w, http.StatusUnprocessableEntity, ve.Fields)
		return
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrOTPExpired),
		errors.Is(err, domain.ErrTooManyAttempts),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("unhandled error", "err", err)
		msg := "internal server error"
		if devMode {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}
