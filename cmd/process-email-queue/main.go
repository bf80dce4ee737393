// Command process-email-queue drains one batch of the email queue and exits.
// It is meant for cron-style schedulers; exit status 1 means the queue could not be read.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/database"
	"github.com/event-qa-api/internal/email"
	"github.com/event-qa-api/internal/repository"
	"github.com/event-qa-api/internal/service"
	"github.com/event-qa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(config.LogConfig{})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Log)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	sender := email.NewResendClient(email.ResendConfig{
		APIKey:  cfg.Email.ResendAPIKey,
		BaseURL: cfg.Email.ResendAPIURL,
		Timeout: cfg.Email.HTTPTimeout,
	})

	services := service.NewServices(repository.New(db), service.Dependencies{Sender: sender}, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := services.EmailQueue.ProcessQueue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Email queue run failed")
		db.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error().Err(err).Msg("Failed to write report")
	}
}
