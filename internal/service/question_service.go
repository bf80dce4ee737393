package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/email"
	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/ratelimit"
	"github.com/event-qa-api/internal/repository"
	"github.com/event-qa-api/internal/telemetry"
	"github.com/event-qa-api/internal/validation"
	"github.com/rs/zerolog"
)

// Caller-facing messages
const (
	msgSubmitted       = "Question submitted successfully"
	msgGlobalLimited   = "We're receiving a lot of questions right now. Please try again in a moment."
	msgClientLimited   = "You've submitted too many questions. Please try again later."
	msgInvalidJSON     = "Invalid JSON in request body"
	msgBodyTooLarge    = "Request body too large"
	msgEventIDRequired = "Event ID is required"
	msgEventNotFound   = "Event not found"
	msgEventNotActive  = "This event is not active"
	msgNotAccepting    = "This event is not accepting questions"
)

// MaxSubmitBody bounds a question submission body. Longer bodies are rejected
// as BAD_REQUEST once the rate limits have been checked.
const MaxSubmitBody = 64 << 10

// limiterCheck is one limiter key evaluated for a request
type limiterCheck struct {
	name string
	key  string
	cfg  ratelimit.Config
}

// questionService is the concrete implementation of QuestionService
type questionService struct {
	events    repository.EventRepository
	questions repository.QuestionRepository
	limiter   ratelimit.Limiter
	policies  ratelimit.Policies
	emails    EmailQueueService
	cfg       config.QuestionsConfig
	now       func() time.Time
	log       zerolog.Logger
}

func newQuestionService(
	repos *repository.Repositories,
	limiter ratelimit.Limiter,
	policies ratelimit.Policies,
	emails EmailQueueService,
	cfg config.QuestionsConfig,
	now func() time.Time,
	log zerolog.Logger,
) *questionService {
	return &questionService{
		events:    repos.Event,
		questions: repos.Question,
		limiter:   limiter,
		policies:  policies,
		emails:    emails,
		cfg:       cfg,
		now:       now,
		log:       log.With().Str("service", "question").Logger(),
	}
}

// Submit validates and stores one audience question. Quota is consumed only once every
// rate limit, input and event check has passed.
func (s *questionService) Submit(ctx context.Context, identity models.ClientIdentity, body []byte) (*models.SubmitQuestionResult, error) {
	checks, err := s.checkLimits(ctx, identity)
	if err != nil {
		return nil, s.reject(err)
	}

	if len(body) > MaxSubmitBody {
		return nil, s.reject(models.NewBadRequest(msgBodyTooLarge))
	}

	var req models.SubmitQuestionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, s.reject(models.NewBadRequest(msgInvalidJSON))
	}

	eventID, ok := req.EventID.(string)
	if !ok || eventID == "" {
		return nil, s.reject(models.NewBadRequest(msgEventIDRequired))
	}

	text, err := validation.ValidateQuestion(req.Question)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			return nil, s.reject(models.NewBadRequest(verr.Message))
		}
		return nil, s.reject(models.NewInternal(err))
	}

	author := validation.ValidateAuthor(req.Author)
	source := models.QuestionSourceAudience
	if req.IsAnonymous() {
		author = models.DefaultAuthor
		source = models.QuestionSourceAnonymous
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, s.reject(models.NewInternal(fmt.Errorf("load event %s: %w", eventID, err)))
	}
	if event == nil {
		return nil, s.reject(models.NewNotFound(msgEventNotFound))
	}
	if !event.IsOpen() {
		return nil, s.reject(models.NewForbidden(msgEventNotActive))
	}
	if !event.IsAcceptingQuestions() {
		return nil, s.reject(models.NewForbidden(msgNotAccepting))
	}

	for _, c := range checks {
		if err := s.limiter.Increment(ctx, c.key, c.cfg); err != nil {
			return nil, s.reject(models.NewInternal(fmt.Errorf("consume %s quota: %w", c.name, err)))
		}
	}

	status := models.QuestionStatusApproved
	if event.RequireApproval {
		status = models.QuestionStatusPending
	}

	now := s.now()
	q := &models.Question{
		EventID:   eventID,
		Question:  text,
		Author:    author,
		Source:    source,
		Status:    status,
		Answered:  false,
		Timestamp: models.FormatTimestamp(now),
		CreatedAt: now.UnixMilli(),
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, s.reject(models.NewInternal(fmt.Errorf("store question: %w", err)))
	}

	if err := s.events.IncrementQuestionCount(ctx, eventID); err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("Failed to increment question count")
	}

	if s.cfg.NotifyOrganizer && event.OrganizerEmail != "" {
		s.notifyOrganizer(ctx, event, q)
	}

	telemetry.QuestionSubmissionsTotal.WithLabelValues(telemetry.OutcomeAccepted).Inc()
	s.log.Info().
		Str("event_id", eventID).
		Str("question_id", q.ID).
		Str("status", string(status)).
		Msg("Question submitted")

	return &models.SubmitQuestionResult{
		Success:    true,
		Message:    msgSubmitted,
		QuestionID: q.ID,
	}, nil
}

// checkLimits evaluates global, per-IP and per-fingerprint limits in that order and
// returns the keys that must be incremented if the request is accepted
func (s *questionService) checkLimits(ctx context.Context, identity models.ClientIdentity) ([]limiterCheck, error) {
	checks := []limiterCheck{
		{name: "global", key: ratelimit.GlobalKey, cfg: s.policies.Global},
		{name: "ip", key: ratelimit.IPKey(identity.IP), cfg: s.policies.PerIP},
	}
	if key, ok := ratelimit.FingerprintKey(identity.Fingerprint); ok {
		checks = append(checks, limiterCheck{name: "fingerprint", key: key, cfg: s.policies.Fingerprint})
	}

	for _, c := range checks {
		res, err := s.limiter.Check(ctx, c.key, c.cfg)
		if err != nil {
			return nil, models.NewInternal(fmt.Errorf("check %s limit: %w", c.name, err))
		}
		if !res.Allowed {
			telemetry.RateLimitDenialsTotal.WithLabelValues(c.name).Inc()
			msg := msgClientLimited
			if c.name == "global" {
				msg = msgGlobalLimited
			}
			return nil, models.NewRateLimited(msg, res.RetryAfterSeconds)
		}
	}
	return checks, nil
}

// notifyOrganizer queues a new_question email; failures never affect the submission
func (s *questionService) notifyOrganizer(ctx context.Context, event *models.Event, q *models.Question) {
	title := event.Title
	if title == "" {
		title = "your event"
	}
	_, err := s.emails.Enqueue(ctx, &models.EnqueueEmailRequest{
		To:       event.OrganizerEmail,
		Subject:  "New question for " + title,
		Template: email.TemplateNewQuestion,
		Data: map[string]any{
			"eventId":    event.ID,
			"eventTitle": event.Title,
			"question":   q.Question,
			"author":     q.Author,
		},
	})
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to queue organizer notification")
	}
}

// reject records the outcome metric and logs expected failures below error level
func (s *questionService) reject(err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternal(err)
	}

	outcome := telemetry.OutcomeError
	switch appErr.Code {
	case models.CodeRateLimited:
		outcome = telemetry.OutcomeRateLimited
	case models.CodeBadRequest:
		outcome = telemetry.OutcomeBadRequest
	case models.CodeNotFound:
		outcome = telemetry.OutcomeNotFound
	case models.CodeForbidden:
		outcome = telemetry.OutcomeForbidden
	}
	telemetry.QuestionSubmissionsTotal.WithLabelValues(outcome).Inc()

	if appErr.Code == models.CodeInternal {
		s.log.Error().Err(appErr.Err).Msg("Question submission failed")
	} else {
		s.log.Debug().Str("code", string(appErr.Code)).Str("reason", appErr.Message).Msg("Question submission rejected")
	}
	return appErr
}
