package service

import (
	"context"
	"time"

	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/email"
	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/ratelimit"
	"github.com/event-qa-api/internal/repository"
	"github.com/rs/zerolog"
)

// QuestionService runs the audience question intake pipeline
type QuestionService interface {
	Submit(ctx context.Context, identity models.ClientIdentity, body []byte) (*models.SubmitQuestionResult, error)
}

// EmailQueueService produces and drains the outbound email queue
type EmailQueueService interface {
	Enqueue(ctx context.Context, req *models.EnqueueEmailRequest) (*models.EmailQueueRecord, error)
	ProcessQueue(ctx context.Context) (*models.BatchReport, error)
	StartProcessor(ctx context.Context)
	StopProcessor()
}

// Services holds all service interfaces
type Services struct {
	Question   QuestionService
	EmailQueue EmailQueueService
}

// Dependencies are the non-store collaborators shared by the services
type Dependencies struct {
	Limiter ratelimit.Limiter
	Sender  email.Sender
	// Clock defaults to time.Now
	Clock func() time.Time
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, deps Dependencies, cfg *config.Config, log zerolog.Logger) *Services {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	emailSvc := newEmailQueueService(repos.EmailQueue, deps.Sender, cfg.Email, deps.Clock, log)
	questionSvc := newQuestionService(repos, deps.Limiter, PoliciesFromConfig(cfg.RateLimit), emailSvc, cfg.Questions, deps.Clock, log)

	return &Services{
		Question:   questionSvc,
		EmailQueue: emailSvc,
	}
}

// PoliciesFromConfig builds the submission limiter policies from configuration
func PoliciesFromConfig(cfg config.RateLimitConfig) ratelimit.Policies {
	return ratelimit.Policies{
		Global:      ratelimit.Config{Max: cfg.GlobalMax, Window: cfg.GlobalWindow},
		PerIP:       ratelimit.Config{Max: cfg.IPMax, Window: cfg.IPWindow},
		Fingerprint: ratelimit.Config{Max: cfg.FingerprintMax, Window: cfg.FingerprintWindow},
	}
}
