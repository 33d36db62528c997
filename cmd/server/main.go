package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/woneiros/travel-planner/internal/api"
	"github.com/woneiros/travel-planner/internal/api/middleware"
	"github.com/woneiros/travel-planner/internal/config"
	"github.com/woneiros/travel-planner/internal/logger"
	"github.com/woneiros/travel-planner/internal/llm/providers"
	"github.com/woneiros/travel-planner/internal/repository/redis"
	"github.com/woneiros/travel-planner/internal/security"
	"github.com/woneiros/travel-planner/internal/service"
	"github.com/woneiros/travel-planner/internal/telemetry"
	"github.com/woneiros/travel-planner/internal/youtube"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCloser, err := logger.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer logCloser.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("env", cfg.Env).
		Msg("Starting travel planner API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	llmRouter, err := providers.NewRouter(cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize LLM providers")
	}

	deps := api.Dependencies{
		Config:    cfg,
		LLMRouter: llmRouter,
	}

	var transcriptCache youtube.TranscriptCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		deps.Redis = redisClient
		deps.RateLimiter = redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
		transcriptCache = redis.NewTranscriptCache(redisClient, cfg.YouTube.TranscriptCacheTTL)
	} else {
		memoryLimiter, err := middleware.NewMemoryRateLimiter(cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create rate limiter")
		}
		deps.RateLimiter = memoryLimiter
	}

	fetcher, err := youtube.NewFetcherFromConfig(ctx, cfg.YouTube, transcriptCache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize YouTube client")
	}
	deps.Fetcher = fetcher

	if cfg.Auth.Enabled {
		verifier, err := security.NewVerifier(cfg.Auth)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize authentication")
		}
		deps.Verifier = verifier
	} else {
		log.Warn().Msg("Authentication disabled")
	}

	store := service.NewSessionStore(cfg.Session.TTL(), service.WithReapInterval(cfg.Session.ReapInterval))
	store.Start(ctx)
	defer store.Stop()
	deps.Store = store

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Server stopped")
}
