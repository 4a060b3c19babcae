package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockPublisher records notifications in memory for tests.
type MockPublisher struct {
	logger    *slog.Logger
	mu        sync.Mutex
	published []Notification
}

func NewMockPublisher(logger *slog.Logger) *MockPublisher {
	return &MockPublisher{logger: logger}
}

func (m *MockPublisher) Publish(ctx context.Context, notification Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, notification)
	if m.logger != nil {
		m.logger.Debug("Mock publish", "type", notification.Type)
	}
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// GetPublished returns a copy of everything published so far.
func (m *MockPublisher) GetPublished() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.published))
	copy(out, m.published)
	return out
}

// Clear drops all recorded notifications.
func (m *MockPublisher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = nil
}
