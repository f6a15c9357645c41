package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/kin/pkg/llm"
)

// MockChatClient is a test chat client that replays scripted responses in
// order and records every request it receives.
type MockChatClient struct {
	mu sync.Mutex

	// Responses are returned by Complete in order. When exhausted, Complete
	// keeps returning the last entry.
	Responses []string

	// Requests accumulates every request passed to Complete.
	Requests []*llm.ChatRequest

	// Err, when set, is returned by every Complete call.
	Err error

	next int
}

// NewMockChatClient creates a mock chat client with the given scripted
// responses.
func NewMockChatClient(responses ...string) *MockChatClient {
	return &MockChatClient{Responses: responses}
}

func (m *MockChatClient) Complete(_ context.Context, req *llm.ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return "", m.Err
	}

	if len(m.Responses) == 0 {
		return "", fmt.Errorf("mock chat client has no scripted responses")
	}

	idx := m.next
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.next++

	return m.Responses[idx], nil
}

// CallCount returns how many times Complete was invoked.
func (m *MockChatClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
