package mocks

import (
	"context"

	"github.com/event-qa-api/internal/models"
	"github.com/event-qa-api/internal/service"
)

// MockQuestionService is a mock implementation of QuestionService
type MockQuestionService struct {
	SubmitFunc func(ctx context.Context, identity models.ClientIdentity, body []byte) (*models.SubmitQuestionResult, error)
	Identities []models.ClientIdentity
}

// Verify interface compliance
var _ service.QuestionService = (*MockQuestionService)(nil)

func NewMockQuestionService() *MockQuestionService {
	return &MockQuestionService{}
}

func (m *MockQuestionService) Submit(ctx context.Context, identity models.ClientIdentity, body []byte) (*models.SubmitQuestionResult, error) {
	m.Identities = append(m.Identities, identity)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, identity, body)
	}
	return &models.SubmitQuestionResult{Success: true, Message: "ok", QuestionID: "test-question-id"}, nil
}

// MockEmailQueueService is a mock implementation of EmailQueueService
type MockEmailQueueService struct {
	EnqueueFunc func(ctx context.Context, req *models.EnqueueEmailRequest) (*models.EmailQueueRecord, error)
	ProcessFunc func(ctx context.Context) (*models.BatchReport, error)
	Enqueued    []*models.EnqueueEmailRequest
	Runs        int
}

// Verify interface compliance
var _ service.EmailQueueService = (*MockEmailQueueService)(nil)

func NewMockEmailQueueService() *MockEmailQueueService {
	return &MockEmailQueueService{}
}

func (m *MockEmailQueueService) Enqueue(ctx context.Context, req *models.EnqueueEmailRequest) (*models.EmailQueueRecord, error) {
	m.Enqueued = append(m.Enqueued, req)
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, req)
	}
	return &models.EmailQueueRecord{
		ID:       "test-email-id",
		To:       req.To,
		Subject:  req.Subject,
		Template: req.Template,
		Data:     req.Data,
		Status:   models.EmailStatusPending,
	}, nil
}

func (m *MockEmailQueueService) ProcessQueue(ctx context.Context) (*models.BatchReport, error) {
	m.Runs++
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx)
	}
	return &models.BatchReport{Message: "No pending emails", Results: []models.EmailResult{}}, nil
}

func (m *MockEmailQueueService) StartProcessor(ctx context.Context) {}

func (m *MockEmailQueueService) StopProcessor() {}
