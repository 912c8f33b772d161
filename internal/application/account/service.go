package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/infrastructure/sns"
	"github.com/go-api-accounts/internal/pkg/id"
	"github.com/go-api-accounts/internal/pkg/logx"
	"golang.org/x/crypto/bcrypt"
)

const maxPasswordBytes = 72

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error)
	Fetch(ctx context.Context, caller domain.Caller, accountID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, caller domain.Caller, accountID string, req domain.UpdateProfileRequest) (*domain.Account, error)
	UpdatePassword(ctx context.Context, caller domain.Caller, req domain.UpdatePasswordRequest) error
	UpdateRole(ctx context.Context, caller domain.Caller, req domain.UpdateRoleRequest) (*domain.Account, error)
	Delete(ctx context.Context, caller domain.Caller, email string) error
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID, username, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdateRole(ctx context.Context, email string, role domain.Role) error
	DeleteByEmail(ctx context.Context, email string) error
}

type otpCleaner interface {
	DeleteByEmail(ctx context.Context, email string) error
}

type otpIssuer interface {
	IssueOTP(ctx context.Context, accountID, email string) error
}

type tokenIssuer interface {
	IssuePair(a *domain.Account) (*domain.Tokens, error)
}

type service struct {
	repo       accountStore
	otps       otpCleaner
	verifier   otpIssuer
	tokens     tokenIssuer
	events     sns.Publisher
	dispatcher *Dispatcher
	hashCost   int

	dummyOnce sync.Once
	dummyHash []byte
}

type ServiceDeps struct {
	AccountRepo accountStore
	OTPRepo     otpCleaner
	Verifier    otpIssuer
	Tokens      tokenIssuer
	Events      sns.Publisher
	Dispatcher  *Dispatcher
	HashCost    int
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:       deps.AccountRepo,
		otps:       deps.OTPRepo,
		verifier:   deps.Verifier,
		tokens:     deps.Tokens,
		events:     deps.Events,
		dispatcher: deps.Dispatcher,
		hashCost:   deps.HashCost,
	}
	if s.events == nil {
		s.events = sns.Noop{}
	}
	if s.dispatcher == nil {
		s.dispatcher = NewDispatcher(0)
	}
	if s.hashCost == 0 {
		s.hashCost = bcrypt.DefaultCost
	}
	return s
}

// Register creates an unverified account and schedules OTP delivery. The
// returned account is durable even if the email later fails to send.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error) {
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}
	email := domain.NormalizeEmail(req.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", domain.ErrInternal)
	}

	// The unique index on email settles concurrent registrations that all
	// passed the lookup above.
	a, err := s.repo.Create(ctx, &domain.Account{
		AccountID:    id.New(),
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Verified:     false,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	accountID, addr := a.AccountID, a.Email
	s.dispatcher.Go(ctx, "issue otp", func(ctx context.Context) error {
		s.publish(ctx, sns.Event{Type: sns.EventAccountRegistered, AccountID: accountID})
		return s.verifier.IssueOTP(ctx, accountID, addr)
	})
	return a, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	a, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Spend the same bcrypt time as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(req.Password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !a.Verified {
		return nil, domain.ErrNotVerified
	}

	tokens, err := s.tokens.IssuePair(a)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", domain.ErrInternal)
	}
	return &domain.LoginResult{Account: a, Tokens: tokens}, nil
}

func (s *service) Fetch(ctx context.Context, caller domain.Caller, accountID string) (*domain.Account, error) {
	if err := authorize(caller, accountID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, accountID)
}

func (s *service) UpdateProfile(ctx context.Context, caller domain.Caller, accountID string, req domain.UpdateProfileRequest) (*domain.Account, error) {
	if err := authorize(caller, accountID); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(req.Email)
	if err := s.repo.UpdateProfile(ctx, accountID, strings.TrimSpace(req.Username), email); err != nil {
		return nil, err
	}
	if email != current.Email {
		// A pending code for the old address can no longer be redeemed.
		s.dropOTP(ctx, current.Email)
	}
	return s.repo.Get(ctx, accountID)
}

func (s *service) UpdatePassword(ctx context.Context, caller domain.Caller, req domain.UpdatePasswordRequest) error {
	email := domain.NormalizeEmail(req.Email)
	if err := authorizeEmail(caller, email); err != nil {
		return err
	}
	if err := checkPassword(req.Password); err != nil {
		return err
	}
	target, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := authorize(caller, target.AccountID); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", domain.ErrInternal)
	}
	return s.repo.UpdatePassword(ctx, target.Email, string(hash))
}

// UpdateRole is restricted to admin-tier callers. Verification state is left untouched.
func (s *service) UpdateRole(ctx context.Context, caller domain.Caller, req domain.UpdateRoleRequest) (*domain.Account, error) {
	if !caller.Role.In(domain.AdminRoles...) {
		return nil, domain.ErrForbidden
	}
	email := domain.NormalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("user email cannot be empty: %w", domain.ErrBadRequest)
	}
	role := domain.Role(strings.TrimSpace(req.AccountType))
	if !role.Valid() {
		return nil, fmt.Errorf("unknown account type %q: %w", req.AccountType, domain.ErrBadRequest)
	}
	if err := s.repo.UpdateRole(ctx, email, role); err != nil {
		return nil, err
	}
	return s.repo.GetByEmail(ctx, email)
}

// Delete removes the account and then its pending OTP record, if any.
func (s *service) Delete(ctx context.Context, caller domain.Caller, email string) error {
	email = domain.NormalizeEmail(email)
	if err := authorizeEmail(caller, email); err != nil {
		return err
	}
	target, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := authorize(caller, target.AccountID); err != nil {
		return err
	}
	if err := s.repo.DeleteByEmail(ctx, target.Email); err != nil {
		return err
	}
	s.dropOTP(ctx, target.Email)

	accountID := target.AccountID
	s.dispatcher.Go(ctx, "publish account.deleted", func(ctx context.Context) error {
		return s.events.Publish(ctx, sns.Event{Type: sns.EventAccountDeleted, AccountID: accountID})
	})
	return nil
}

// authorize lets admin-tier roles act on any account and other roles only on their own.
func authorize(caller domain.Caller, accountID string) error {
	if !caller.Role.Valid() {
		return domain.ErrForbidden
	}
	if caller.Role.In(domain.AdminRoles...) || caller.AccountID == accountID {
		return nil
	}
	return domain.ErrForbidden
}

// authorizeEmail rejects non-admin callers naming an address other than their
// own before any lookup, so the response does not reveal whether it exists.
func authorizeEmail(caller domain.Caller, email string) error {
	if !caller.Role.Valid() {
		return domain.ErrForbidden
	}
	if caller.Role.In(domain.AdminRoles...) || domain.NormalizeEmail(caller.Email) == email {
		return nil
	}
	return domain.ErrForbidden
}

// checkPassword enforces bcrypt's 72-byte input limit.
func checkPassword(pw string) error {
	if len(pw) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, domain.ErrBadRequest)
	}
	return nil
}

func (s *service) dropOTP(ctx context.Context, email string) {
	if err := s.otps.DeleteByEmail(ctx, email); err != nil {
		slog.Warn("failed to delete otp record", "email", logx.MaskEmail(email), "err", err)
	}
}

func (s *service) publish(ctx context.Context, e sns.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "type", e.Type, "account_id", e.AccountID, "err", err)
	}
}

func (s *service) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
		if err != nil {
			slog.Error("failed to build dummy hash", "err", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
