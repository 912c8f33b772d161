package http

import (
	"net/http"

	"github.com/go-api-accounts/internal/application/account"
	"github.com/go-api-accounts/internal/application/verification"
	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/transport/http/handler"
	appmiddleware "github.com/go-api-accounts/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sensitiveRL := deps.RateLimiter
	if sensitiveRL == nil {
		// 5 requests/second, burst of 10.
		sensitiveRL = appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	}

	verifySvc := verification.NewService(verification.ServiceDeps{
		OTPRepo:     deps.OTPRepo,
		AccountRepo: deps.AccountRepo,
		Mailer:      deps.Mailer,
		Events:      deps.Events,
		TTL:         cfg.OTPTTL,
		HashCost:    cfg.OTPHashCost,
	})
	accountSvc := account.NewService(account.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		OTPRepo:     deps.OTPRepo,
		Verifier:    verifySvc,
		Tokens:      deps.JWTProvider,
		Events:      deps.Events,
		Dispatcher:  deps.Dispatcher,
		HashCost:    cfg.PasswordHashCost,
	})

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc, cfg.CookieDomain)
	verifyH := handler.NewVerificationHandler(verifySvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Check)
	r.Group(func(r chi.Router) {
		r.Use(sensitiveRL.Limit)

		r.Post("/users/register", accountH.Register)
		r.Post("/users/login", accountH.Login)
		r.Post("/verifyOTP", verifyH.VerifyOTP)
		r.Post("/resendOTPVerificationCode", verifyH.ResendOTP)
	})

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Auth(deps.JWTProvider))
		r.Use(appmiddleware.RequireRole(domain.AllRoles...))

		r.Post("/users/fetch/{id}", accountH.Fetch)
		r.Post("/users/update/{id}", accountH.UpdateProfile)
		r.Post("/users/update_password", accountH.UpdatePassword)
		r.Post("/users/delete", accountH.Delete)

		// Admin-tier only
		r.With(appmiddleware.RequireRole(domain.AdminRoles...)).
			Post("/users/update/type/{id}", accountH.UpdateRole)
	})

	return r
}
