package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/underbudget/backend/internal/config"
	"github.com/underbudget/backend/internal/metrics"
	mW "github.com/underbudget/backend/internal/middleware"
	"go.uber.org/zap"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type RouterDeps struct {
	Auth     *AuthHandler
	Ledgers  *LedgerHandler
	AuthMW   *mW.AuthMiddleware
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Checks   map[string]HealthCheck
	Logger   *zap.Logger
}

func NewRouter(cfg config.ServerConfig, d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mW.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(mW.SecurityHeaders)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(d.Metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	r.Get("/health", healthHandler(d.Checks))
	if d.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(d.Gatherer))
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Public endpoints
	r.Post("/users", d.Auth.Register)
	r.Post("/tokens", d.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(d.AuthMW.Handler)

		r.Get("/users/me", d.Auth.CurrentUser)
		r.Delete("/users/me", d.Auth.DeleteUser)

		r.Get("/tokens", d.Auth.ListTokens)
		r.Delete("/tokens/{jwtId}", d.Auth.RevokeToken)

		r.Route("/ledgers", func(r chi.Router) {
			r.Post("/", d.Ledgers.CreateLedger)
			r.Get("/", d.Ledgers.ListLedgers)
			r.Get("/{ledgerId}", d.Ledgers.GetLedger)
			r.Get("/{ledgerId}/permissions", d.Ledgers.ListPermissions)
			r.Post("/{ledgerId}/permissions", d.Ledgers.SharePermission)
			r.Delete("/{ledgerId}/permissions/{userId}", d.Ledgers.RevokePermission)
		})
	})

	return r
}

// healthHandler reports "healthy" when every check passes and 503 with the
// failing dependencies otherwise.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "failed": failed})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
