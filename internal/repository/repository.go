package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/event-qa-api/internal/database"
	"github.com/event-qa-api/internal/models"
)

// EventRepository defines the event reads and counter updates needed by question intake
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
	IncrementQuestionCount(ctx context.Context, id string) error
}

// QuestionRepository defines the interface for question data operations
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	ListByEvent(ctx context.Context, eventID string) ([]*models.Question, error)
}

// EmailQueueRepository defines the email queue operations.
// Mark* methods only move a record forward and report false when the record was not in the
// expected prior state.
type EmailQueueRepository interface {
	Enqueue(ctx context.Context, rec *models.EmailQueueRecord) error
	GetByID(ctx context.Context, id string) (*models.EmailQueueRecord, error)
	GetPending(ctx context.Context, limit int) ([]*models.EmailQueueRecord, error)
	MarkProcessing(ctx context.Context, id string, at time.Time) (bool, error)
	MarkSent(ctx context.Context, id, resendID string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, id, errMsg string, at time.Time) (bool, error)
	CountByStatus(ctx context.Context, statuses ...models.EmailStatus) (map[models.EmailStatus]int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Event      EventRepository
	Question   QuestionRepository
	EmailQueue EmailQueueRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Event:      NewEventRepo(db),
		Question:   NewQuestionRepo(db),
		EmailQueue: NewEmailQueueRepo(db),
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
