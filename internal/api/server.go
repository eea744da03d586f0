package api

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/meta-audience-relay/internal/config"
)

// Dependencies are the services the HTTP layer drives.
type Dependencies struct {
	Audiences AudienceCreator
	Insights  InsightsProvider
	// Redis is optional and only used for health reporting.
	Redis *redis.Client
}

// Server represents the API server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	handlers := NewHandlers(deps.Audiences, deps.Insights)
	health := NewHealthChecker(deps.Redis, cfg.Meta)

	return &Server{
		config:  cfg.Server,
		handler: SetupRoutes(cfg, handlers, health),
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// Large customer lists upload many batches sequentially within one request.
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
