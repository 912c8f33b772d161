package domain

import "time"

// Tokens is the access/refresh pair issued on login.
type Tokens struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Account *Account `json:"user"`
	Tokens  *Tokens  `json:"tokens"`
}
