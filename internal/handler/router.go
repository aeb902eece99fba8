package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/userhub/userhub-go/internal/middleware"
	"github.com/userhub/userhub-go/internal/model"
	"github.com/userhub/userhub-go/internal/observability"
	"github.com/userhub/userhub-go/internal/service"
)

// RouterConfig carries everything NewRouter wires together. Metrics,
// Gatherer and Ping are optional.
type RouterConfig struct {
	Users    *service.UserService
	Auth     *service.AuthService
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Ping     func(context.Context) error
}

// NewRouter builds the HTTP surface of the service.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	users := NewUserHandler(cfg.Users)
	auth := NewAuthHandler(cfg.Auth, cfg.Metrics)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/health", healthHandler(cfg.Ping))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/auth/login", auth.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.Auth))

		r.Get("/auth/me", users.HandleMe)

		r.Route("/users", func(r chi.Router) {
			r.With(middleware.RequireRole(model.RoleAdmin)).Post("/", users.HandleCreate)
			r.With(middleware.RequireRole(model.RoleAdmin)).Get("/", users.HandleList)
			r.With(middleware.RequireRole(model.RoleAdmin, model.RoleUser)).Get("/{id}", users.HandleGet)
			r.With(middleware.RequireRole(model.RoleAdmin)).Patch("/{id}", users.HandleUpdate)
			r.With(middleware.RequireRole(model.RoleAdmin)).Delete("/{id}", users.HandleDelete)
		})
	})

	return r
}

func healthHandler(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				slog.WarnContext(r.Context(), "health check failed", "error", err)
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
