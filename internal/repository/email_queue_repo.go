package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/event-qa-api/internal/database"
	"github.com/event-qa-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// emailQueueRepo is the concrete implementation of EmailQueueRepository
type emailQueueRepo struct {
	db *database.DB
}

// NewEmailQueueRepo creates a new email queue repository
func NewEmailQueueRepo(db *database.DB) EmailQueueRepository {
	return &emailQueueRepo{db: db}
}

const emailColumns = `id, recipient, subject, template, data, status, created_at,
	processing_started_at, sent_at, failed_at, resend_id, error`

// Enqueue appends a pending record. ID and CreatedAt are filled in when empty.
func (r *emailQueueRepo) Enqueue(ctx context.Context, rec *models.EmailQueueRecord) error {
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate email id: %w", err)
		}
		rec.ID = id.String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Status = models.EmailStatusPending

	data := rec.Data
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode email data: %w", err)
	}

	query := `
		INSERT INTO email_queue (id, recipient, subject, template, data, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.To, rec.Subject, rec.Template, payload, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert email: %w", err)
	}
	return nil
}

// GetByID retrieves a queue record by ID
func (r *emailQueueRepo) GetByID(ctx context.Context, id string) (*models.EmailQueueRecord, error) {
	query := `SELECT ` + emailColumns + ` FROM email_queue WHERE id = $1`

	rec, err := scanEmail(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetPending returns up to limit pending records in creation order
func (r *emailQueueRepo) GetPending(ctx context.Context, limit int) ([]*models.EmailQueueRecord, error) {
	query := `
		SELECT ` + emailColumns + `
		FROM email_queue WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.EmailQueueRecord
	for rows.Next() {
		rec, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// MarkProcessing claims a pending record
func (r *emailQueueRepo) MarkProcessing(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE email_queue SET status = 'processing', processing_started_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	return r.transition(ctx, query, at, id)
}

// MarkSent finalises a processing record as delivered
func (r *emailQueueRepo) MarkSent(ctx context.Context, id, resendID string, at time.Time) (bool, error) {
	query := `
		UPDATE email_queue SET status = 'sent', sent_at = $1, resend_id = $2
		WHERE id = $3 AND status = 'processing'
	`
	return r.transition(ctx, query, at, nullString(resendID), id)
}

// MarkFailed finalises a processing record as failed
func (r *emailQueueRepo) MarkFailed(ctx context.Context, id, errMsg string, at time.Time) (bool, error) {
	query := `
		UPDATE email_queue SET status = 'failed', failed_at = $1, error = $2
		WHERE id = $3 AND status = 'processing'
	`
	return r.transition(ctx, query, at, errMsg, id)
}

func (r *emailQueueRepo) transition(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// CountByStatus counts records per status; with no statuses given every status is counted
func (r *emailQueueRepo) CountByStatus(ctx context.Context, statuses ...models.EmailStatus) (map[models.EmailStatus]int, error) {
	if len(statuses) == 0 {
		statuses = []models.EmailStatus{
			models.EmailStatusPending, models.EmailStatusProcessing,
			models.EmailStatusSent, models.EmailStatusFailed,
		}
	}
	names := make([]string, len(statuses))
	counts := make(map[models.EmailStatus]int, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
		counts[s] = 0
	}

	query := `SELECT status, COUNT(*) FROM email_queue WHERE status = ANY($1) GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status models.EmailStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmail(row rowScanner) (*models.EmailQueueRecord, error) {
	var rec models.EmailQueueRecord
	var data []byte
	var processingAt, sentAt, failedAt sql.NullTime
	var resendID, errMsg sql.NullString

	err := row.Scan(
		&rec.ID, &rec.To, &rec.Subject, &rec.Template, &data, &rec.Status, &rec.CreatedAt,
		&processingAt, &sentAt, &failedAt, &resendID, &errMsg,
	)
	if err != nil {
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return nil, fmt.Errorf("decode email data for %s: %w", rec.ID, err)
		}
	}
	rec.ProcessingStartedAt = timePtr(processingAt)
	rec.SentAt = timePtr(sentAt)
	rec.FailedAt = timePtr(failedAt)
	rec.ResendID = resendID.String
	rec.Error = errMsg.String

	return &rec, nil
}
