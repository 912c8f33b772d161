package http

import (
	"context"

	"github.com/go-api-accounts/internal/application/account"
	"github.com/go-api-accounts/internal/domain"
	jwtinfra "github.com/go-api-accounts/internal/infrastructure/jwt"
	"github.com/go-api-accounts/internal/infrastructure/smtp"
	"github.com/go-api-accounts/internal/infrastructure/sns"
	appmiddleware "github.com/go-api-accounts/internal/transport/http/middleware"
)

// AccountRepository is the credential store the router wires into the services.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	MarkVerified(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, accountID, username, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdateRole(ctx context.Context, email string, role domain.Role) error
	DeleteByEmail(ctx context.Context, email string) error
}

// OTPRepository is satisfied by both the DynamoDB and Redis OTP stores.
type OTPRepository interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	GetByEmail(ctx context.Context, email string) (*domain.OTPRecord, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo AccountRepository
	OTPRepo     OTPRepository
	Mailer      smtp.Mailer
	Events      sns.Publisher
	JWTProvider *jwtinfra.Provider
	// Dispatcher runs post-commit work; the caller drains it on shutdown.
	Dispatcher *account.Dispatcher
	// RateLimiter guards the public credential endpoints. Created when nil.
	RateLimiter *appmiddleware.RateLimiter
}
