package domain

import "time"

// OTPRecord is a pending email verification code.
// PK: email. ExpiresAt doubles as the DynamoDB TTL attribute (Unix seconds).
type OTPRecord struct {
	AccountID string `json:"account_id" dynamodbav:"account_id"`
	Email     string `json:"email" dynamodbav:"email"`
	OTPHash   string `json:"otp_hash" dynamodbav:"otp_hash"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.Unix() > r.ExpiresAt
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

// VerifiedResult is returned by a successful OTP verification.
type VerifiedResult struct {
	AccountID  string    `json:"account_id"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}
