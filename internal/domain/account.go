package domain

import (
	"strings"
	"time"
)

type Account struct {
	AccountID    string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"account_type"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"updated"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

type UpdatePasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// UpdateRoleRequest keeps the legacy account_type field name used by the web client.
type UpdateRoleRequest struct {
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
}

type DeleteAccountRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Caller identifies who is performing an authorized mutation.
type Caller struct {
	AccountID string
	Email     string
	Role      Role
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
