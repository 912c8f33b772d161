package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/storeerr"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

const accountColumns = `account_id, username, email, password_hash, account_type, verified, created_at, updated_at`

// AccountRepo is the credential store backed by the accounts table.
// Every statement uses bound parameters.
type AccountRepo struct {
	db      DBTX
	timeout time.Duration
}

func NewAccountRepo(db DBTX, timeout time.Duration) *AccountRepo {
	return &AccountRepo{db: db, timeout: timeout}
}

func (r *AccountRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Create inserts a new account. The unique index on email is the race-safe
// guard against duplicate registrations and surfaces as domain.ErrEmailTaken.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query :=
		`INSERT INTO accounts (account_id, username, email, password_hash, account_type, verified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING account_id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.AccountID, a.Username, a.Email, a.PasswordHash, string(a.Role), a.Verified,
	).Scan(&a.AccountID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create account: %w", domain.ErrEmailTaken)
		}
		return nil, storeerr.Wrap("create account", err)
	}
	return a, nil
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`, accountID)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

// MarkVerified flips verified to true. It never resets it.
func (r *AccountRepo) MarkVerified(ctx context.Context, email string) error {
	return r.execOne(ctx, "mark verified",
		`UPDATE accounts SET verified = TRUE, updated_at = now() WHERE email = $1`, email)
}

func (r *AccountRepo) UpdateProfile(ctx context.Context, accountID, username, email string) error {
	err := r.execOne(ctx, "update profile",
		`UPDATE accounts SET username = $1, email = $2, updated_at = now() WHERE account_id = $3`,
		username, email, accountID)
	if isUniqueViolation(err) {
		return fmt.Errorf("update profile: %w", domain.ErrEmailTaken)
	}
	return err
}

func (r *AccountRepo) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.execOne(ctx, "update password",
		`UPDATE accounts SET password_hash = $1, updated_at = now() WHERE email = $2`,
		passwordHash, email)
}

func (r *AccountRepo) UpdateRole(ctx context.Context, email string, role domain.Role) error {
	return r.execOne(ctx, "update account type",
		`UPDATE accounts SET account_type = $1, updated_at = now() WHERE email = $2`,
		string(role), email)
}

func (r *AccountRepo) DeleteByEmail(ctx context.Context, email string) error {
	return r.execOne(ctx, "delete account", `DELETE FROM accounts WHERE email = $1`, email)
}

func (r *AccountRepo) getOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		a    domain.Account
		role string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.AccountID, &a.Username, &a.Email, &a.PasswordHash, &role, &a.Verified, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeerr.Wrap("get account", err)
	}
	a.Role = domain.Role(role)
	return &a, nil
}

// execOne runs a single-row mutation and reports domain.ErrAccountNotFound when no row matched.
func (r *AccountRepo) execOne(ctx context.Context, op, query string, args ...any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return err
		}
		return storeerr.Wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeerr.Wrap(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrAccountNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
