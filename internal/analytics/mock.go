package analytics

import (
	"context"
	"sync"
)

var _ Service = (*MockAnalytics)(nil)

// MockAnalytics is a Service implementation for tests. It records events in
// memory.
type MockAnalytics struct {
	mu     sync.Mutex
	Events []DisplayEvent
}

// NewMockAnalytics creates a new mock analytics instance.
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

// RecordEvent appends the event to the in-memory list.
func (m *MockAnalytics) RecordEvent(_ context.Context, ev DisplayEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return nil
}

// Recorded returns a copy of the events recorded so far.
func (m *MockAnalytics) Recorded() []DisplayEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DisplayEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
