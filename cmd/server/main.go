package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/meta-audience-relay/internal/api"
	"github.com/ignite/meta-audience-relay/internal/cache"
	"github.com/ignite/meta-audience-relay/internal/config"
	"github.com/ignite/meta-audience-relay/internal/meta"
	"github.com/ignite/meta-audience-relay/internal/pkg/logger"
	"github.com/ignite/meta-audience-relay/internal/service/audience"
	"github.com/ignite/meta-audience-relay/internal/service/insights"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		RedactPII: true,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	client := meta.NewClient(cfg.Meta)
	logger.Info("meta client configured",
		"account", "act_"+cfg.Meta.AccountID(),
		"api_version", cfg.Meta.APIVersion,
		"base_url", cfg.Meta.BaseURL,
		"timeout", cfg.Meta.Timeout(),
	)

	// Optional Redis cache for insights
	var redisClient *redis.Client
	insightsOpts := []insights.Option{}
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unavailable, insights cache disabled", "addr", cfg.Redis.Addr, "error", err)
			redisClient.Close()
			redisClient = nil
		} else {
			insightsCache := cache.NewInsightsCache(redisClient, cfg.Meta.AccountID(), cfg.Redis.InsightsTTL())
			insightsOpts = append(insightsOpts, insights.WithCache(insightsCache))
			logger.Info("insights cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.InsightsTTL())
		}
		pingCancel()
	}

	audiences := audience.NewService(client,
		audience.WithBatchSize(cfg.Meta.BatchSize),
		audience.WithDescription(cfg.Meta.AudienceDescription),
	)

	server := api.NewServer(cfg, api.Dependencies{
		Audiences: audiences,
		Insights:  insights.NewService(client, insightsOpts...),
		Redis:     redisClient,
	})

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		log.Fatalf("Cannot start server: %v", err)
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("server stopped")
}
