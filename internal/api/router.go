// Package api exposes the staffing pipeline over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"staffrag/internal/app"
	"staffrag/internal/observability"
)

// NewRouter configures middleware and routes.
func NewRouter(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	timeout := deps.Config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 140 * time.Second
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestMiddleware(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", OutcomeHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", HealthCheck(deps))
	r.Get("/readyz", ReadinessCheck(deps))
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/chat", ChatHandler(deps))

	r.Route("/employees", func(r chi.Router) {
		r.Get("/search", SearchHandler(deps))
		r.Get("/retrieve", RetrieveHandler(deps))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMethodNotAllowed(w)
	})

	return r
}
