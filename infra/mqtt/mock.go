package mqtt

import "sync"

// MockPublisher records events in memory for tests.
type MockPublisher struct {
	mu     sync.Mutex
	Events []any
	Closed bool
	Err    error
}

func (m *MockPublisher) PublishEvent(e any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, e)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

func (m *MockPublisher) Published() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.Events))
	copy(out, m.Events)
	return out
}
