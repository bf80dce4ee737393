package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/mocks"
	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/ratelimit"
	"github.com/event-qa-api/internal/repository"
	"github.com/event-qa-api/internal/service"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *service.Services
	repos     *repository.Repositories
	cfg       *config.Config
	events    *mocks.MockEventRepository
	questions *mocks.MockQuestionRepository
	emails    *mocks.MockEmailQueueRepository
	sender    *mocks.MockSender
	limiter   *ratelimit.MemoryLimiter
}

func testConfig() *config.Config {
	return &config.Config{
		RateLimit: config.RateLimitConfig{
			Backend:           config.RateLimitBackendMemory,
			GlobalMax:         100,
			GlobalWindow:      time.Minute,
			IPMax:             20,
			IPWindow:          time.Hour,
			FingerprintMax:    10,
			FingerprintWindow: time.Hour,
		},
		Email: config.EmailConfig{
			From:      "Event Q&A <noreply@example.com>",
			BatchSize: 10,
		},
	}
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	repos, events, questions, emails := mocks.NewMockRepositories()
	sender := mocks.NewMockSender()
	limiter := ratelimit.NewMemoryLimiter(ratelimit.WithClock(func() time.Time { return fixedNow }))

	svc := service.NewServices(repos, service.Dependencies{
		Limiter: limiter,
		Sender:  sender,
		Clock:   func() time.Time { return fixedNow },
	}, cfg, zerolog.Nop())

	return &fixture{
		svc:       svc,
		repos:     repos,
		cfg:       cfg,
		events:    events,
		questions: questions,
		emails:    emails,
		sender:    sender,
		limiter:   limiter,
	}
}

func boolPtr(b bool) *bool { return &b }

func publishedEvent(id string) *models.Event {
	return &models.Event{
		ID:                       id,
		Title:                    "Launch Day",
		Status:                   models.EventStatusPublished,
		EnableQuestionSubmission: boolPtr(true),
	}
}

// failingLimiter simulates an unreachable limiter backend
type failingLimiter struct{}

func (failingLimiter) Check(context.Context, string, ratelimit.Config) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis: connection refused")
}

func (failingLimiter) Increment(context.Context, string, ratelimit.Config) error {
	return errors.New("redis: connection refused")
}
