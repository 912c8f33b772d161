package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-api-accounts/internal/domain"
)

const maxBodyBytes = 1 << 20

// Verification outcome labels kept for existing web clients.
const (
	StatusVerified = "VERIFIED"
	StatusResent   = "RESENT"
	StatusFailed   = "FAILED"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// RegisterEnvelope wraps the account created by registration.
type RegisterEnvelope struct {
	Message string          `json:"message"`
	Data    *domain.Account `json:"data"`
}

// LoginEnvelope wraps a successful login.
type LoginEnvelope struct {
	Message string          `json:"message"`
	User    *domain.Account `json:"user"`
	Tokens  *domain.Tokens  `json:"tokens"`
}

// AccountEnvelope wraps a single account.
type AccountEnvelope struct {
	Message string          `json:"message"`
	User    *domain.Account `json:"user"`
}

// StatusEnvelope is used by the verification endpoints.
type StatusEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
