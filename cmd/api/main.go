package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-api-accounts/internal/application/account"
	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-api-accounts/internal/infrastructure/jwt"
	"github.com/go-api-accounts/internal/infrastructure/postgres"
	redisinfra "github.com/go-api-accounts/internal/infrastructure/redis"
	"github.com/go-api-accounts/internal/infrastructure/smtp"
	"github.com/go-api-accounts/internal/infrastructure/sns"
	"github.com/go-api-accounts/internal/pkg/logx"
	transporthttp "github.com/go-api-accounts/internal/transport/http"
	appmiddleware "github.com/go-api-accounts/internal/transport/http/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	logx.New(os.Stdout, logx.Options{
		Service: "accounts-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	otpRepo, closeOTP, err := openOTPStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeOTP()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg)
	if err != nil {
		return fmt.Errorf("smtp mailer: %w", err)
	}

	events, err := sns.NewPublisher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("sns publisher: %w", err)
	}

	dispatcher := account.NewDispatcher(cfg.SMTPTimeout + cfg.StoreTimeout*3)
	limiter := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	defer limiter.Stop()

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		AccountRepo: postgres.NewAccountRepo(db, cfg.StoreTimeout),
		OTPRepo:     otpRepo,
		Mailer:      mailer,
		Events:      events,
		JWTProvider: jwtProvider,
		Dispatcher:  dispatcher,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "otp_store", cfg.OTPStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	// Let in-flight OTP emails and events finish before closing the stores.
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		slog.Warn("background tasks did not finish", "err", err)
	}
	slog.Info("server stopped")
	return nil
}

// openOTPStore returns the OTP store selected by OTP_STORE and a func that releases it.
func openOTPStore(ctx context.Context, cfg *config.Config) (transporthttp.OTPRepository, func(), error) {
	switch cfg.OTPStore {
	case "redis":
		client, err := redisinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return redisinfra.NewOTPRepo(client, cfg.StoreTimeout), func() { _ = client.Close() }, nil
	case "", "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return dynamo.NewOTPRepo(client, cfg.DynamoTables.OTPVerifications, cfg.StoreTimeout), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown OTP_STORE %q", cfg.OTPStore)
	}
}
