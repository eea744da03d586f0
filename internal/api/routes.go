package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignite/meta-audience-relay/internal/config"
)

// SetupRoutes configures all API routes.
func SetupRoutes(cfg *config.Config, h *Handlers, hc *HealthChecker) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// Server identity header - distinguishes the relay from the local Graph stub
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "meta-audience-relay")
			next.ServeHTTP(w, req)
		})
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health and metrics (never rate limited)
	r.Get("/health", hc.HandleHealth)
	r.Get("/health/live", hc.HandleLiveness)
	r.Get("/health/ready", hc.HandleReadiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.Enabled && cfg.RateLimit.Requests > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window()))
		}

		// Insights passthrough
		r.Get("/meta-ads", h.GetMetaAds)

		// Custom audiences
		r.Post("/meta/custom-audience", h.CreateCustomAudience)
	})

	return r
}
