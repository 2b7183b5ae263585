package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/crucial707/groupchat/internal/auth"
	"github.com/crucial707/groupchat/internal/config"
	"github.com/crucial707/groupchat/internal/handlers"
	"github.com/crucial707/groupchat/internal/middleware"
	"github.com/crucial707/groupchat/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires repositories, handlers and middleware into the API router.
// Every route accepts an optional trailing slash.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	users := repo.NewUserRepo(database)
	tokens := repo.NewTokenRepo(database)
	messages := repo.NewMessageRepo(database)
	events := repo.NewEventRepo(database)

	authHandler := &handlers.AuthHandler{DB: database, Users: users, Tokens: tokens, Events: events}
	profileHandler := &handlers.ProfileHandler{Users: users, Events: events}
	messageHandler := &handlers.MessageHandler{Messages: messages}

	requireToken := []func(http.Handler) http.Handler{
		middleware.TokenAuth(auth.NewAuthenticator(tokens)),
		middleware.RequireAuth,
	}
	authLimiter := middleware.AuthRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst, cfg.TrustProxyHeaders)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(chimw.StripSlashes)
	r.Use(middleware.MaxBytes(cfg.MaxBodyBytes))

	// ==========================
	// Probes
	// ==========================
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := database.PingContext(ctx); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// ==========================
	// Auth
	// ==========================
	r.Route("/auth", func(r chi.Router) {
		r.With(authLimiter.Middleware).Post("/register", authHandler.Register)
		r.With(authLimiter.Middleware).Post("/login", authHandler.Login)
		r.With(requireToken...).Post("/logout", authHandler.Logout)
	})

	// ==========================
	// Authenticated resources
	// ==========================
	r.Group(func(r chi.Router) {
		r.Use(requireToken...)

		r.Get("/profile", profileHandler.Get)
		r.Put("/profile", profileHandler.Update)
		r.Get("/profile/activity", profileHandler.Activity)

		r.Get("/messages", messageHandler.List)
		r.Post("/messages", messageHandler.Create)
	})

	return r
}
