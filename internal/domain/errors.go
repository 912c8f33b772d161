package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Account and credential errors.
var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("please verify your account first")
	ErrAccountNotFound    = errors.New("account not found")
)

// Verification errors.
var (
	ErrNoPendingVerification = errors.New("account record doesn't exist or has been verified already, please sign up or log in")
	ErrOTPExpired            = errors.New("code has expired, please request again")
	ErrInvalidCode           = errors.New("invalid verification code given, check your inbox and submit again")
	ErrAlreadyVerified       = errors.New("account is already verified")
	ErrDeliveryFailed        = errors.New("verification email could not be delivered")
)

// Store errors. ErrTransientStore marks timeouts and lost connections the caller may retry.
var (
	ErrVerificationStore = errors.New("verification store error")
	ErrTransientStore    = errors.New("store temporarily unavailable")
)
