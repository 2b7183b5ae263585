package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	cookieName  = "chat_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080"
	envWebPort  = "CHAT_WEB_PORT"
	envAPIURL   = "CHAT_API_URL"

	// pageSize is how many messages the chat page shows at once.
	pageSize = 20
)

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := strings.TrimRight(getEnv(envAPIURL, defaultAPI), "/")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newRouter(apiBase),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("web UI running", "url", "http://localhost:"+port, "api", apiBase)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("web UI stopped", "error", err)
		os.Exit(1)
	}
}

func newRouter(apiBase string) http.Handler {
	api := &apiClient{base: apiBase, http: &http.Client{Timeout: 10 * time.Second}}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(api))
	r.Get("/register", registerForm)
	r.Post("/register", registerSubmit(api))

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(api))
		r.Get("/", redirectChat)
		r.Get("/chat", chatPage(api))
		r.Post("/chat", chatPost(api))
		r.Get("/profile", profilePage)
		r.Post("/profile", profileUpdate(api))
		r.Post("/logout", logout(api))
	})

	return r
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
