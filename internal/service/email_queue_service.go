package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/event-qa-api/internal/config"
	"github.com/event-qa-api/internal/email"
	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/repository"
	"github.com/event-qa-api/internal/telemetry"
	"github.com/rs/zerolog"
)

// emailQueueService is the concrete implementation of EmailQueueService
type emailQueueService struct {
	repo   repository.EmailQueueRepository
	sender email.Sender
	cfg    config.EmailConfig
	now    func() time.Time
	log    zerolog.Logger

	// runMu serialises batches so the scheduled loop and manual triggers never overlap
	runMu sync.Mutex

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func newEmailQueueService(repo repository.EmailQueueRepository, sender email.Sender, cfg config.EmailConfig, now func() time.Time, log zerolog.Logger) *emailQueueService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &emailQueueService{
		repo:   repo,
		sender: sender,
		cfg:    cfg,
		now:    now,
		log:    log.With().Str("service", "email_queue").Logger(),
	}
}

// Enqueue validates and appends a pending email
func (s *emailQueueService) Enqueue(ctx context.Context, req *models.EnqueueEmailRequest) (*models.EmailQueueRecord, error) {
	to := strings.TrimSpace(req.To)
	if to == "" {
		return nil, models.NewBadRequest("Recipient is required")
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return nil, models.NewBadRequest("Recipient is not a valid email address")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return nil, models.NewBadRequest("Subject is required")
	}
	if req.Template == "" {
		return nil, models.NewBadRequest("Template is required")
	}
	if !email.IsKnownTemplate(req.Template) {
		s.log.Warn().Str("template", req.Template).Msg("Unknown template queued, announcement will be used")
	}

	rec := &models.EmailQueueRecord{
		To:        to,
		Subject:   req.Subject,
		Template:  req.Template,
		Data:      req.Data,
		Status:    models.EmailStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Enqueue(ctx, rec); err != nil {
		return nil, models.NewInternal(fmt.Errorf("enqueue email: %w", err))
	}

	s.log.Debug().Str("email_id", rec.ID).Str("template", rec.Template).Msg("Email queued")
	return rec, nil
}

// ProcessQueue drains one batch of pending emails sequentially. A failing record is marked
// failed and the batch continues; only a failure to read the queue is returned.
func (s *emailQueueService) ProcessQueue(ctx context.Context) (*models.BatchReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	defer func() { telemetry.EmailBatchDuration.Observe(time.Since(start).Seconds()) }()

	records, err := s.repo.GetPending(ctx, s.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("load pending emails: %w", err)
	}

	report := &models.BatchReport{Results: make([]models.EmailResult, 0, len(records))}
	if len(records) == 0 {
		report.Message = "No pending emails"
		return report, nil
	}

	// Cancellation stops new claims; a claimed record always reaches a terminal status.
	recordCtx := context.WithoutCancel(ctx)
	for _, rec := range records {
		if ctx.Err() != nil {
			s.log.Warn().Msg("Email batch interrupted, remaining records stay pending")
			break
		}

		result, claimed := s.processRecord(recordCtx, rec)
		if !claimed {
			continue
		}
		report.Results = append(report.Results, result)
		if result.Status == models.EmailStatusSent {
			report.Processed++
		} else {
			report.Failed++
		}
	}

	report.Message = fmt.Sprintf("Processed %d emails, %d failed", report.Processed, report.Failed)
	s.recordDepth(ctx)

	s.log.Info().
		Int("processed", report.Processed).
		Int("failed", report.Failed).
		Dur("duration", time.Since(start)).
		Msg("Email batch completed")

	return report, nil
}

// processRecord claims, renders and sends one record. claimed is false when another
// worker already took it or the claim itself failed.
func (s *emailQueueService) processRecord(ctx context.Context, rec *models.EmailQueueRecord) (models.EmailResult, bool) {
	log := s.log.With().Str("email_id", rec.ID).Logger()

	claimed, err := s.repo.MarkProcessing(ctx, rec.ID, s.now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to claim email")
		return models.EmailResult{}, false
	}
	if !claimed {
		log.Debug().Msg("Email already claimed")
		return models.EmailResult{}, false
	}

	html, err := email.Render(rec.Template, rec.Data)
	if err != nil {
		return s.fail(ctx, log, rec, err), true
	}

	resendID, err := s.sender.Send(ctx, email.Message{
		From:    s.cfg.From,
		To:      rec.To,
		Subject: rec.Subject,
		HTML:    html,
	})
	if err != nil {
		return s.fail(ctx, log, rec, err), true
	}

	if err := s.markSent(ctx, rec.ID, resendID); err != nil {
		log.Error().Err(err).Str("resend_id", resendID).Msg("Email sent but status update failed")
		return s.fail(ctx, log, rec, fmt.Errorf("sent as %s but status not recorded: %w", resendID, err)), true
	}
	telemetry.EmailsProcessedTotal.WithLabelValues(string(models.EmailStatusSent)).Inc()
	log.Debug().Str("resend_id", resendID).Msg("Email sent")

	return models.EmailResult{ID: rec.ID, Status: models.EmailStatusSent, To: rec.To}, true
}

// markSent records delivery, retrying the write once
func (s *emailQueueService) markSent(ctx context.Context, id, resendID string) error {
	_, err := s.repo.MarkSent(ctx, id, resendID, s.now().UTC())
	if err == nil {
		return nil
	}
	_, err = s.repo.MarkSent(ctx, id, resendID, s.now().UTC())
	return err
}

func (s *emailQueueService) fail(ctx context.Context, log zerolog.Logger, rec *models.EmailQueueRecord, cause error) models.EmailResult {
	msg := cause.Error()
	if _, err := s.repo.MarkFailed(ctx, rec.ID, msg, s.now().UTC()); err != nil {
		log.Error().Err(err).Msg("Failed to record email failure")
	}
	telemetry.EmailsProcessedTotal.WithLabelValues(string(models.EmailStatusFailed)).Inc()
	log.Warn().Err(cause).Msg("Email delivery failed")

	return models.EmailResult{ID: rec.ID, Status: models.EmailStatusFailed, Error: msg}
}

func (s *emailQueueService) recordDepth(ctx context.Context) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("Failed to sample email queue depth")
		return
	}
	for status, n := range counts {
		telemetry.EmailQueueDepth.WithLabelValues(string(status)).Set(float64(n))
	}
}

// StartProcessor drains the queue every EMAIL_QUEUE_INTERVAL until StopProcessor is called.
// It blocks; run it in its own goroutine. A zero interval disables the loop.
func (s *emailQueueService) StartProcessor(ctx context.Context) {
	if s.cfg.QueueInterval <= 0 {
		s.log.Info().Msg("Email queue processor disabled")
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	loopCtx := s.ctx
	s.mu.Unlock()
	defer s.wg.Done()

	s.log.Info().Dur("interval", s.cfg.QueueInterval).Msg("Email queue processor started")

	ticker := time.NewTicker(s.cfg.QueueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			s.log.Info().Msg("Email queue processor stopping")
			return
		case <-ticker.C:
			if _, err := s.ProcessQueue(loopCtx); err != nil {
				s.log.Error().Err(err).Msg("Scheduled email batch failed")
			}
		}
	}
}

// StopProcessor stops the scheduled loop and waits for an in-flight batch to finish
func (s *emailQueueService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Email queue processor stopped")
}
