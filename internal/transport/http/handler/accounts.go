package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-api-accounts/internal/application/account"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/validate"
	"github.com/go-api-accounts/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

const refreshCookieName = "refresh_token"

// AccountHandler handles registration, login and account management endpoints.
type AccountHandler struct {
	svc          account.Service
	cookieDomain string
}

func NewAccountHandler(svc account.Service, cookieDomain string) *AccountHandler {
	return &AccountHandler{svc: svc, cookieDomain: cookieDomain}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RegisterEnvelope{Message: "Account Created!", Data: a})
}

// Login returns the token pair in the body and mirrors the refresh token into
// a cross-site cookie for browser clients.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    res.Tokens.RefreshToken,
		Path:     "/",
		Domain:   h.cookieDomain,
		Expires:  res.Tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	writeJSON(w, http.StatusOK, LoginEnvelope{Message: "Login successful", User: res.Account, Tokens: res.Tokens})
}

func (h *AccountHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.Fetch(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountEnvelope{Message: "User found", User: a})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.svc.UpdateProfile(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountEnvelope{Message: "User updated", User: a})
}

func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.UpdatePassword(r.Context(), caller, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password updated"})
}

// UpdateRole changes account_type for the account named in the body. The {id}
// path segment is accepted for client compatibility and ignored. A missing or
// unknown email is reported as 401 as existing clients expect.
func (h *AccountHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.UpdateRole(r.Context(), caller, req)
	if err != nil {
		emptyEmail := errors.Is(err, domain.ErrBadRequest) && strings.TrimSpace(req.Email) == ""
		if emptyEmail || errors.Is(err, domain.ErrAccountNotFound) {
			writeError(w, http.StatusUnauthorized, "email is empty or does not belong to an account")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountEnvelope{Message: "Account type updated", User: a})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.DeleteAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), caller, req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "User deleted"})
}
