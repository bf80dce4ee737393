package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/event-qa-api/internal/email"
)

// MockSender records messages instead of delivering them
type MockSender struct {
	mu sync.Mutex
	// SendFunc overrides the default behaviour; call is the 1-based call number
	SendFunc func(ctx context.Context, call int, msg email.Message) (string, error)
	Sent     []email.Message
	calls    int
}

var _ email.Sender = (*MockSender)(nil)

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	fn := m.SendFunc
	m.mu.Unlock()

	if fn != nil {
		id, err := fn(ctx, call, msg)
		if err != nil {
			return "", err
		}
		m.record(msg)
		return id, nil
	}

	m.record(msg)
	return fmt.Sprintf("mock-%d", call), nil
}

func (m *MockSender) record(msg email.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
}

// Calls returns how many times Send was invoked
func (m *MockSender) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
