package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/event-qa-api/internal/database"
	"github.com/event-qa-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return database.Wrap(db, zerolog.Nop()), mock
}

var eventColumns = []string{
	"id", "title", "status", "enable_question_submission", "accepting_questions",
	"require_approval", "question_count", "organizer_email",
}

func TestEventRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1")).
		WithArgs("evt-1").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("evt-1", "Launch", "published", nil, false, true, 4, "org@example.com"))

	e, err := repo.GetByID(context.Background(), "evt-1")
	require.NoError(t, err)
	require.NotNil(t, e)

	assert.Equal(t, models.EventStatusPublished, e.Status)
	assert.Nil(t, e.EnableQuestionSubmission)
	require.NotNil(t, e.AcceptingQuestions)
	assert.False(t, *e.AcceptingQuestions)
	assert.False(t, e.IsAcceptingQuestions())
	assert.True(t, e.RequireApproval)
	assert.Equal(t, 4, e.QuestionCount)
	assert.Equal(t, "org@example.com", e.OrganizerEmail)
}

func TestEventRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	e, err := repo.GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestEventRepo_IncrementQuestionCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepo(db)
	query := regexp.QuoteMeta("UPDATE events SET question_count = question_count + 1 WHERE id = $1")

	mock.ExpectExec(query).WithArgs("evt-1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.IncrementQuestionCount(context.Background(), "evt-1"))

	mock.ExpectExec(query).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.IncrementQuestionCount(context.Background(), "gone"), ErrEventNotFound)
}

func TestQuestionRepo_Create_AssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuestionRepo(db)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	q := &models.Question{
		EventID:   "evt-1",
		Question:  "What is the roadmap?",
		Author:    models.DefaultAuthor,
		Source:    models.QuestionSourceAudience,
		Status:    models.QuestionStatusApproved,
		Timestamp: models.FormatTimestamp(created),
		CreatedAt: created.UnixMilli(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO questions")).
		WithArgs(sqlmock.AnyArg(), "evt-1", "What is the roadmap?", "Anonymous",
			models.QuestionSourceAudience, models.QuestionStatusApproved, false, created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), q))
	assert.Len(t, q.ID, 36)
}

func TestQuestionRepo_ListByEvent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuestionRepo(db)

	created := time.Date(2024, 3, 1, 12, 0, 0, 250_000_000, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE event_id = $1")).
		WithArgs("evt-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "question", "author", "source", "status", "answered", "created_at"}).
			AddRow("0190f0b4-0000-7000-8000-000000000001", "evt-1", "Hello there", "Sam", "audience", "pending", false, created))

	qs, err := repo.ListByEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "2024-03-01T12:00:00.250Z", qs[0].Timestamp)
	assert.Equal(t, created.UnixMilli(), qs[0].CreatedAt)
}

var emailRowColumns = []string{
	"id", "recipient", "subject", "template", "data", "status", "created_at",
	"processing_started_at", "sent_at", "failed_at", "resend_id", "error",
}

func TestEmailQueueRepo_Enqueue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmailQueueRepo(db)

	rec := &models.EmailQueueRecord{
		To:       "dana@example.com",
		Subject:  "Welcome",
		Template: "welcome",
		Data:     map[string]any{"name": "Dana"},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO email_queue")).
		WithArgs(sqlmock.AnyArg(), "dana@example.com", "Welcome", "welcome",
			[]byte(`{"name":"Dana"}`), models.EmailStatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Enqueue(context.Background(), rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, models.EmailStatusPending, rec.Status)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestEmailQueueRepo_GetPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmailQueueRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM email_queue WHERE status = 'pending'")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(emailRowColumns).
			AddRow("a", "a@example.com", "A", "welcome", []byte(`{"name":"A"}`), "pending", now, nil, nil, nil, nil, nil).
			AddRow("b", "b@example.com", "B", "announcement", []byte(`{}`), "pending", now, nil, nil, nil, nil, nil))

	recs, err := repo.GetPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].Data["name"])
	assert.Equal(t, "b@example.com", recs[1].To)
	assert.Nil(t, recs[0].SentAt)
}

func TestEmailQueueRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmailQueueRepo(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM email_queue WHERE id = $1")).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows(emailRowColumns).
			AddRow("a", "a@example.com", "A", "welcome", []byte(`{}`), "sent", now, now, now, nil, "re_123", nil))

	rec, err := repo.GetByID(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.EmailStatusSent, rec.Status)
	assert.Equal(t, "re_123", rec.ResendID)
	assert.NotNil(t, rec.SentAt)
	assert.Nil(t, rec.FailedAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM email_queue WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	rec, err = repo.GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestEmailQueueRepo_Transitions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmailQueueRepo(db)
	ctx := context.Background()
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'processing'")).
		WithArgs(at, "a").WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.MarkProcessing(ctx, "a", at)
	require.NoError(t, err)
	assert.True(t, ok)

	// already claimed by another worker
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $2 AND status = 'pending'")).
		WithArgs(at, "a").WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.MarkProcessing(ctx, "a", at)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'sent'")).
		WithArgs(at, "re_1", "a").WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err = repo.MarkSent(ctx, "a", "re_1", at)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'failed'")).
		WithArgs(at, "boom", "b").WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err = repo.MarkFailed(ctx, "b", "boom", at)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'failed'")).
		WithArgs(at, "boom", "c").WillReturnError(errors.New("connection reset"))
	_, err = repo.MarkFailed(ctx, "c", "boom", at)
	assert.Error(t, err)
}

func TestEmailQueueRepo_CountByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmailQueueRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM email_queue WHERE status = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("failed", 1))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.EmailStatusPending])
	assert.Equal(t, 1, counts[models.EmailStatusFailed])
	assert.Equal(t, 0, counts[models.EmailStatusSent])
	assert.Len(t, counts, 4)
}
