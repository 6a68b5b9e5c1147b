package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/vibe-app-store/internal/api"
	customMiddleware "github.com/Rrens/vibe-app-store/internal/api/middleware"
	"github.com/Rrens/vibe-app-store/internal/config"
	"github.com/Rrens/vibe-app-store/internal/logging"
	"github.com/Rrens/vibe-app-store/internal/repository"
	"github.com/Rrens/vibe-app-store/internal/repository/redis"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := false
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		fmt.Println("Warning: .env file not found in any standard location")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logFile, err := logging.Setup(cfg.Env, cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("cache_backend", cfg.Cache.Backend).
		Msg("Starting Vibe App Store server")

	// Initialize KV store
	kv, err := repository.DefaultRegistry().Open(context.Background(), cfg.Cache.Backend, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open KV store")
	}
	defer kv.Close()

	// Initialize rate limiter
	var limiter customMiddleware.Limiter
	if cfg.Security.RateLimit.Enabled {
		redisClient, err := redis.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, inbound rate limiting disabled")
		} else {
			defer redisClient.Close()
			limiter = redis.NewRateLimiter(
				redisClient,
				cfg.Security.RateLimit.RequestsPerMinute,
				cfg.Security.RateLimit.Burst,
			)
		}
	}

	// Initialize services and router
	services := api.NewServices(cfg, kv)
	router := api.NewRouter(cfg, services, limiter)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop thumbnail fan-outs before the store goes away
	services.Close()

	log.Info().Msg("Server stopped")
}
