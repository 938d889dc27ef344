package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/makt28/kumamail/internal/config"
)

// NewRouter sets up all routes and returns the http.Handler.
func NewRouter(cfg config.Config, notifier Notifier, renderer Renderer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	health := NewHealthHandler()
	webhook := NewWebhookHandler(cfg, notifier, renderer)

	// Public routes
	r.Get("/webhook/health", health.ServeHTTP)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(TokenAuth(cfg.WebhookToken))
		r.Post("/webhook", webhook.ServeHTTP)
	})

	r.NotFound(usage)
	r.MethodNotAllowed(usage)

	return r
}
