package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/kin/pkg/eventstream"
)

// MockPublisher is a test event publisher that records published events.
type MockPublisher struct {
	mu sync.Mutex

	// Events accumulates every published event.
	Events []*eventstream.TurnCompletedEvent

	// Fail causes Publish to return an error.
	Fail bool
}

var _ eventstream.Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates an empty mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return fmt.Errorf("mock publish failure")
	}

	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Len returns the number of published events.
func (m *MockPublisher) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}
