package handler

import (
	"net/http"

	"github.com/go-api-accounts/internal/application/verification"
	"github.com/go-api-accounts/internal/domain"
)

// VerificationHandler serves the OTP verify and resend endpoints. Responses
// carry a status label instead of the generic error envelope.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func (h *VerificationHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusEnvelope{Status: StatusVerified, Message: "User email verified successfully."})
}

func (h *VerificationHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ResendOTP(r.Context(), req.Email); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusEnvelope{Status: StatusResent, Message: "Verification otp email sent"})
}

// fail reports domain outcomes as-is and collapses every server-side failure to 500.
func (h *VerificationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := httpError(r, err)
	if status >= http.StatusInternalServerError {
		status, msg = http.StatusInternalServerError, "verification failed, please try again later"
	}
	writeJSON(w, status, StatusEnvelope{Status: StatusFailed, Message: msg})
}
