package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/repository"
	"github.com/google/uuid"
)

// MockEventRepository is an in-memory EventRepository
type MockEventRepository struct {
	mu             sync.Mutex
	Events         map[string]*models.Event
	GetError       error
	IncrementError error
	IncrementCalls int
}

var _ repository.EventRepository = (*MockEventRepository)(nil)

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{
		Events: make(map[string]*models.Event),
	}
}

// Put stores an event, replacing any existing one with the same ID
func (m *MockEventRepository) Put(e *models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.Events[e.ID] = &cp
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	e, ok := m.Events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *MockEventRepository) IncrementQuestionCount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IncrementCalls++
	if m.IncrementError != nil {
		return m.IncrementError
	}
	e, ok := m.Events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	e.QuestionCount++
	return nil
}

// MockQuestionRepository is an in-memory QuestionRepository
type MockQuestionRepository struct {
	mu          sync.Mutex
	Questions   []*models.Question
	CreateError error
}

var _ repository.QuestionRepository = (*MockQuestionRepository)(nil)

func NewMockQuestionRepository() *MockQuestionRepository {
	return &MockQuestionRepository{}
}

func (m *MockQuestionRepository) Create(ctx context.Context, q *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if q.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		q.ID = id.String()
	}
	cp := *q
	m.Questions = append(m.Questions, &cp)
	return nil
}

func (m *MockQuestionRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Question
	for _, q := range m.Questions {
		if q.EventID == eventID {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Count returns the number of stored questions
func (m *MockQuestionRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Questions)
}

// MockEmailQueueRepository is an in-memory EmailQueueRepository that enforces
// the same forward-only status transitions as the SQL implementation
type MockEmailQueueRepository struct {
	mu           sync.Mutex
	Records      map[string]*models.EmailQueueRecord
	order        []string
	EnqueueError error
	PendingError error
	MarkError    error
	// MarkSentError fails only the processing -> sent transition
	MarkSentError error
	MarkCalls     int
}

var _ repository.EmailQueueRepository = (*MockEmailQueueRepository)(nil)

func NewMockEmailQueueRepository() *MockEmailQueueRepository {
	return &MockEmailQueueRepository{
		Records: make(map[string]*models.EmailQueueRecord),
	}
}

func (m *MockEmailQueueRepository) Enqueue(ctx context.Context, rec *models.EmailQueueRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnqueueError != nil {
		return m.EnqueueError
	}
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		rec.ID = id.String()
	}
	if _, exists := m.Records[rec.ID]; exists {
		return fmt.Errorf("duplicate email id %s", rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Status = models.EmailStatusPending
	cp := *rec
	m.Records[rec.ID] = &cp
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *MockEmailQueueRepository) GetByID(ctx context.Context, id string) (*models.EmailQueueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MockEmailQueueRepository) GetPending(ctx context.Context, limit int) ([]*models.EmailQueueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PendingError != nil {
		return nil, m.PendingError
	}
	var out []*models.EmailQueueRecord
	for _, id := range m.order {
		if len(out) >= limit {
			break
		}
		rec := m.Records[id]
		if rec.Status == models.EmailStatusPending {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockEmailQueueRepository) transition(id string, from, to models.EmailStatus, apply func(*models.EmailQueueRecord)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkCalls++
	if m.MarkError != nil {
		return false, m.MarkError
	}
	rec, ok := m.Records[id]
	if !ok || rec.Status != from {
		return false, nil
	}
	rec.Status = to
	apply(rec)
	return true, nil
}

func (m *MockEmailQueueRepository) MarkProcessing(ctx context.Context, id string, at time.Time) (bool, error) {
	return m.transition(id, models.EmailStatusPending, models.EmailStatusProcessing, func(r *models.EmailQueueRecord) {
		r.ProcessingStartedAt = &at
	})
}

func (m *MockEmailQueueRepository) MarkSent(ctx context.Context, id, resendID string, at time.Time) (bool, error) {
	m.mu.Lock()
	sentErr := m.MarkSentError
	m.mu.Unlock()
	if sentErr != nil {
		return false, sentErr
	}
	return m.transition(id, models.EmailStatusProcessing, models.EmailStatusSent, func(r *models.EmailQueueRecord) {
		r.SentAt = &at
		r.ResendID = resendID
	})
}

func (m *MockEmailQueueRepository) MarkFailed(ctx context.Context, id, errMsg string, at time.Time) (bool, error) {
	return m.transition(id, models.EmailStatusProcessing, models.EmailStatusFailed, func(r *models.EmailQueueRecord) {
		r.FailedAt = &at
		r.Error = errMsg
	})
}

func (m *MockEmailQueueRepository) CountByStatus(ctx context.Context, statuses ...models.EmailStatus) (map[models.EmailStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(statuses) == 0 {
		statuses = []models.EmailStatus{
			models.EmailStatusPending, models.EmailStatusProcessing,
			models.EmailStatusSent, models.EmailStatusFailed,
		}
	}
	counts := make(map[models.EmailStatus]int, len(statuses))
	for _, s := range statuses {
		counts[s] = 0
	}
	for _, rec := range m.Records {
		if _, tracked := counts[rec.Status]; tracked {
			counts[rec.Status]++
		}
	}
	return counts, nil
}

// All returns every record in enqueue order
func (m *MockEmailQueueRepository) All() []*models.EmailQueueRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.EmailQueueRecord, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.Records[id]
		out = append(out, &cp)
	}
	return out
}

// NewMockRepositories returns a fully in-memory store
func NewMockRepositories() (*repository.Repositories, *MockEventRepository, *MockQuestionRepository, *MockEmailQueueRepository) {
	events := NewMockEventRepository()
	questions := NewMockQuestionRepository()
	emails := NewMockEmailQueueRepository()
	return &repository.Repositories{
		Event:      events,
		Question:   questions,
		EmailQueue: emails,
	}, events, questions, emails
}
