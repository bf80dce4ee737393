package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/event-qa-api/internal/database"
	"github.com/event-qa-api/internal/models"
)

// ErrEventNotFound is returned by IncrementQuestionCount when no row matched
var ErrEventNotFound = errors.New("event not found")

// eventRepo is the concrete implementation of EventRepository
type eventRepo struct {
	db *database.DB
}

// NewEventRepo creates a new event repository
func NewEventRepo(db *database.DB) EventRepository {
	return &eventRepo{db: db}
}

// GetByID retrieves an event by ID; a missing event is nil, nil
func (r *eventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, title, status, enable_question_submission, accepting_questions,
			require_approval, question_count, organizer_email
		FROM events WHERE id = $1
	`

	var e models.Event
	var enable, accepting sql.NullBool
	var organizer sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Status, &enable, &accepting,
		&e.RequireApproval, &e.QuestionCount, &organizer,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if enable.Valid {
		e.EnableQuestionSubmission = &enable.Bool
	}
	if accepting.Valid {
		e.AcceptingQuestions = &accepting.Bool
	}
	e.OrganizerEmail = organizer.String

	return &e, nil
}

// IncrementQuestionCount bumps the counter in a single statement so concurrent
// submissions never lose an update
func (r *eventRepo) IncrementQuestionCount(ctx context.Context, id string) error {
	query := `UPDATE events SET question_count = question_count + 1 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment question count: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrEventNotFound
	}
	return nil
}
