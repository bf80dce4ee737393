package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/event-qa-api/internal/api"
	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/database"
	"github.com/event-qa-api/internal/email"
	"github.com/event-qa-api/internal/ratelimit"
	"github.com/event-qa-api/internal/repository"
	"github.com/event-qa-api/internal/service"
	"github.com/event-qa-api/internal/telemetry"
	"github.com/event-qa-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(config.LogConfig{})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.Log)
	log.Info().Msg("Starting Event Q&A API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()
	telemetry.StartDBStatsCollector(rootCtx, db.DB, 30*time.Second, log)

	limiter, closeLimiter, err := newLimiter(rootCtx, cfg.RateLimit, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise rate limiter")
	}
	defer closeLimiter()

	sender := email.NewResendClient(email.ResendConfig{
		APIKey:  cfg.Email.ResendAPIKey,
		BaseURL: cfg.Email.ResendAPIURL,
		Timeout: cfg.Email.HTTPTimeout,
	})
	if cfg.Email.ResendAPIKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set, queued emails will be marked failed")
	}

	repos := repository.New(db)
	services := service.NewServices(repos, service.Dependencies{
		Limiter: limiter,
		Sender:  sender,
	}, cfg, log)

	// Scheduled queue processing; returns immediately when EMAIL_QUEUE_INTERVAL is 0
	go services.EmailQueue.StartProcessor(rootCtx)

	router := api.NewRouter(services, db, cfg, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	services.EmailQueue.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

// newLimiter builds the configured rate limiter backend
func newLimiter(ctx context.Context, cfg config.RateLimitConfig, log zerolog.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.Backend != config.RateLimitBackendRedis {
		log.Info().Dur("cleanup_interval", cfg.CleanupInterval).Msg("Using in-memory rate limiter")
		limiter := ratelimit.NewMemoryLimiter(ratelimit.WithCleanup(cfg.CleanupInterval))
		return limiter, limiter.Stop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis rate limiter")
	return ratelimit.NewRedisLimiter(client, cfg.RedisPrefix), func() { client.Close() }, nil
}
