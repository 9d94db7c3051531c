package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/tokengate/internal/adapter/http/handler"
	"github.com/iho/tokengate/internal/adapter/http/middleware"
	"github.com/iho/tokengate/internal/domain"
	"github.com/iho/tokengate/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	GenerateHandler *handler.GenerateHandler
	AccountHandler  *handler.AccountHandler
	EntryHandler    *handler.EntryHandler
	TopUpHandler    *handler.TopUpHandler
	HealthHandler   *handler.HealthHandler
	Verifier        *auth.JWTVerifier
	RateLimiter     *middleware.RateLimiter
	Logger          zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Webhooks authenticate with a shared secret, not a bearer token.
	r.Post("/webhooks/payment", cfg.TopUpHandler.HandleTopUp)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Verifier))

		r.Post("/generate", cfg.GenerateHandler.Generate)

		r.Route("/accounts", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/", cfg.AccountHandler.Create)
			r.With(middleware.RequireRole(domain.RoleAdmin)).Post("/{id}/credit", cfg.AccountHandler.Credit)
			r.Get("/{id}/balance", cfg.AccountHandler.GetBalance)
			r.Get("/{id}/entries", cfg.EntryHandler.List)
		})
	})

	return r
}
