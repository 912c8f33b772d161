// Package redis is an alternative OTP store for deployments that keep soft
// state in Redis instead of DynamoDB.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/storeerr"
	goredis "github.com/go-redis/redis/v8"
)

const keyOTP = "otp:%s"

// reapGrace keeps a record readable for a while after expires_at so a late
// verification still reports the code as expired instead of missing.
const reapGrace = time.Hour

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// OTPRepo stores one JSON-encoded record per email under otp:<email>.
type OTPRepo struct {
	client  goredis.Cmdable
	timeout time.Duration
	now     func() time.Time
}

func NewOTPRepo(client goredis.Cmdable, timeout time.Duration) *OTPRepo {
	return &OTPRepo{client: client, timeout: timeout, now: time.Now}
}

func (r *OTPRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	ttl := time.Unix(rec.ExpiresAt, 0).Sub(r.now()) + reapGrace
	if ttl < time.Second {
		ttl = time.Second
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return storeerr.Wrap("put otp record", r.client.Set(ctx, fmt.Sprintf(keyOTP, rec.Email), data, ttl).Err())
}

func (r *OTPRepo) GetByEmail(ctx context.Context, email string) (*domain.OTPRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	val, err := r.client.Get(ctx, fmt.Sprintf(keyOTP, email)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("otp record: %w", domain.ErrNoPendingVerification)
		}
		return nil, storeerr.Wrap("get otp record", err)
	}

	var rec domain.OTPRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &rec, nil
}

func (r *OTPRepo) DeleteByEmail(ctx context.Context, email string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return storeerr.Wrap("delete otp record", r.client.Del(ctx, fmt.Sprintf(keyOTP, email)).Err())
}
