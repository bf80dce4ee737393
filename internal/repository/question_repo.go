package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/event-qa-api/internal/database"
	"github.com/event-qa-api/internal/models"
	"github.com/google/uuid"
)

// questionRepo is the concrete implementation of QuestionRepository
type questionRepo struct {
	db *database.DB
}

// NewQuestionRepo creates a new question repository
func NewQuestionRepo(db *database.DB) QuestionRepository {
	return &questionRepo{db: db}
}

// Create inserts a question, assigning a time-ordered id when none is set
func (r *questionRepo) Create(ctx context.Context, q *models.Question) error {
	if q.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate question id: %w", err)
		}
		q.ID = id.String()
	}

	query := `
		INSERT INTO questions (id, event_id, question, author, source, status, answered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.EventID, q.Question, q.Author, q.Source, q.Status, q.Answered,
		time.UnixMilli(q.CreatedAt).UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// ListByEvent returns an event's questions oldest first
func (r *questionRepo) ListByEvent(ctx context.Context, eventID string) ([]*models.Question, error) {
	query := `
		SELECT id, event_id, question, author, source, status, answered, created_at
		FROM questions WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		var q models.Question
		var createdAt time.Time
		if err := rows.Scan(&q.ID, &q.EventID, &q.Question, &q.Author, &q.Source, &q.Status, &q.Answered, &createdAt); err != nil {
			return nil, err
		}
		q.CreatedAt = createdAt.UnixMilli()
		q.Timestamp = models.FormatTimestamp(createdAt)
		questions = append(questions, &q)
	}

	return questions, rows.Err()
}
