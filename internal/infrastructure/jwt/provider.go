package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims holds the JWT payload fields.
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"account_type"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewProvider loads the PEM key pair from disk. In development a missing key
// pair is replaced by an ephemeral one so the service can boot without setup.
func NewProvider(cfg *config.Config) (*Provider, error) {
	privKey, pubKey, err := loadKeys(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath)
	if err != nil {
		if cfg.AppEnv != "development" || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		slog.Warn("jwt key files missing, using ephemeral key", "private", cfg.JWTPrivateKeyPath)
		privKey, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral key: %w", err)
		}
		pubKey = &privKey.PublicKey
	}
	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		accessTTL:  cfg.JWTAccessTTL,
		refreshTTL: cfg.JWTRefreshTTL,
		now:        time.Now,
	}, nil
}

// NewProviderFromKey builds a provider around an in-memory key.
func NewProviderFromKey(key *rsa.PrivateKey, accessTTL, refreshTTL time.Duration) *Provider {
	return &Provider{
		privateKey: key,
		publicKey:  &key.PublicKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func loadKeys(privPath, pubPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privBytes, err := os.ReadFile(privPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse public key: %w", err)
	}
	return privKey, pubKey, nil
}

// IssuePair signs a short-lived access token and a long-lived refresh token.
func (p *Provider) IssuePair(a *domain.Account) (*domain.Tokens, error) {
	now := p.now()
	access, accessExp, err := p.sign(a, TypeAccess, now, p.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := p.sign(a, TypeRefresh, now, p.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.Tokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (p *Provider) sign(a *domain.Account, typ string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := Claims{
		AccountID: a.AccountID,
		Email:     a.Email,
		Role:      a.Role.String(),
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			Subject:   a.AccountID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// VerifyAccess is Verify restricted to access tokens.
func (p *Provider) VerifyAccess(tokenStr string) (*Claims, error) {
	claims, err := p.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TypeAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}
