package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-api-accounts/internal/domain"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// errorMapping is checked in order; the first sentinel matched by errors.Is wins.
var errorMapping = []struct {
	err    error
	status int
}{
	{domain.ErrEmailTaken, http.StatusUnauthorized},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrNotVerified, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrAccountNotFound, http.StatusNotFound},
	{domain.ErrNoPendingVerification, http.StatusBadRequest},
	{domain.ErrOTPExpired, http.StatusBadRequest},
	{domain.ErrInvalidCode, http.StatusBadRequest},
	{domain.ErrAlreadyVerified, http.StatusBadRequest},
	{domain.ErrTransientStore, http.StatusServiceUnavailable},
	{domain.ErrDeliveryFailed, http.StatusBadGateway},
}

// httpError maps a service error to a status code and a client-safe message.
// Unmatched errors are logged and reported as a generic 500.
func httpError(r *http.Request, err error) (int, string) {
	if errors.Is(err, domain.ErrBadRequest) {
		return http.StatusBadRequest, err.Error()
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				logFailure(r, m.status, err)
			}
			return m.status, m.err.Error()
		}
	}
	logFailure(r, http.StatusInternalServerError, err)
	return http.StatusInternalServerError, "internal server error"
}

func logFailure(r *http.Request, status int, err error) {
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"request_id", chimiddleware.GetReqID(r.Context()),
		"err", err,
	)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := httpError(r, err)
	writeError(w, status, msg)
}
