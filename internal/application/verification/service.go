package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/infrastructure/smtp"
	"github.com/go-api-accounts/internal/infrastructure/sns"
	"github.com/go-api-accounts/internal/pkg/logx"
	"golang.org/x/crypto/bcrypt"
)

// Codes are drawn uniformly from [codeMin, codeMin+codeSpan).
const (
	codeMin  = 1000
	codeSpan = 9000
)

type Service interface {
	IssueOTP(ctx context.Context, accountID, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*domain.VerifiedResult, error)
	ResendOTP(ctx context.Context, email string) error
}

type otpStore interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	GetByEmail(ctx context.Context, email string) (*domain.OTPRecord, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	MarkVerified(ctx context.Context, email string) error
}

type service struct {
	otps     otpStore
	accounts accountStore
	mailer   smtp.Mailer
	events   sns.Publisher
	ttl      time.Duration
	hashCost int
	now      func() time.Time
}

type ServiceDeps struct {
	OTPRepo     otpStore
	AccountRepo accountStore
	Mailer      smtp.Mailer
	Events      sns.Publisher
	TTL         time.Duration
	HashCost    int
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		otps:     deps.OTPRepo,
		accounts: deps.AccountRepo,
		mailer:   deps.Mailer,
		events:   deps.Events,
		ttl:      deps.TTL,
		hashCost: deps.HashCost,
		now:      deps.Now,
	}
	if s.events == nil {
		s.events = sns.Noop{}
	}
	if s.ttl <= 0 {
		s.ttl = time.Hour
	}
	if s.hashCost == 0 {
		s.hashCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// IssueOTP replaces any pending code for email, then emails the new one.
// Nothing is sent unless the record was stored.
func (s *service) IssueOTP(ctx context.Context, accountID, email string) error {
	email = domain.NormalizeEmail(email)
	code, err := newCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", domain.ErrInternal)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", domain.ErrInternal)
	}

	if err := s.otps.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVerificationStore, err)
	}
	now := s.now()
	rec := &domain.OTPRecord{
		AccountID: accountID,
		Email:     email,
		OTPHash:   string(hash),
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	if err := s.otps.Put(ctx, rec); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVerificationStore, err)
	}

	msg, err := smtp.OTPMessage(email, code, s.ttl)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Warn("otp email not delivered", "account_id", accountID, "email", logx.MaskEmail(email), "err", err)
		s.publish(ctx, sns.Event{Type: sns.EventDeliveryFailed, AccountID: accountID, Detail: err.Error()})
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) (*domain.VerifiedResult, error) {
	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, fmt.Errorf("empty otp details are not allowed: %w", domain.ErrBadRequest)
	}

	rec, err := s.otps.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingVerification) {
			return nil, domain.ErrNoPendingVerification
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrVerificationStore, err)
	}

	if rec.Expired(s.now()) {
		if err := s.otps.DeleteByEmail(ctx, email); err != nil {
			slog.Warn("failed to delete expired otp record", "email", logx.MaskEmail(email), "err", err)
		}
		return nil, domain.ErrOTPExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.OTPHash), []byte(code)); err != nil {
		return nil, domain.ErrInvalidCode
	}

	// The record stays until the account is marked so a failed write can be retried.
	if err := s.accounts.MarkVerified(ctx, email); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVerificationStore, err)
	}
	if err := s.otps.DeleteByEmail(ctx, email); err != nil {
		slog.Warn("failed to delete used otp record", "email", logx.MaskEmail(email), "err", err)
	}

	s.publish(ctx, sns.Event{Type: sns.EventAccountVerified, AccountID: rec.AccountID})
	return &domain.VerifiedResult{
		AccountID:  rec.AccountID,
		Email:      email,
		VerifiedAt: s.now().UTC(),
	}, nil
}

func (s *service) ResendOTP(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("empty user email is not allowed: %w", domain.ErrBadRequest)
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}
	if a.Verified {
		return domain.ErrAlreadyVerified
	}
	return s.IssueOTP(ctx, a.AccountID, a.Email)
}

func (s *service) publish(ctx context.Context, e sns.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "type", e.Type, "account_id", e.AccountID, "err", err)
	}
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
