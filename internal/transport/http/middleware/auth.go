package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-api-accounts/internal/domain"
	jwtinfra "github.com/go-api-accounts/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

type tokenVerifier interface {
	VerifyAccess(tokenStr string) (*jwtinfra.Claims, error)
}

// Auth returns middleware that validates the Bearer access token and injects claims into context.
func Auth(verifier tokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := verifier.VerifyAccess(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// CallerFromContext converts the request's claims into a domain.Caller.
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return domain.Caller{}, false
	}
	return domain.Caller{AccountID: c.AccountID, Email: c.Email, Role: domain.Role(c.Role)}, true
}
