package session

import (
	"context"
	"sync"
	"time"

	"github.com/papercomputeco/kin/pkg/llm"
)

// InMemoryStore implements Store with a process-local map, for tests and
// ephemeral deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*Thread
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory thread store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{threads: make(map[string]*Thread)}
}

// Load returns a copy of the stored thread, or ErrNotFound.
func (s *InMemoryStore) Load(_ context.Context, id string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.threads[id]
	if !ok {
		return nil, ErrNotFound
	}

	return copyThread(stored), nil
}

// Save persists a copy of the thread, bumping its version and timestamp.
func (s *InMemoryStore) Save(_ context.Context, thread *Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread.Version++
	thread.UpdatedAt = time.Now().UTC()
	s.threads[thread.ID] = copyThread(thread)

	return nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}

// Len returns the number of stored threads.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads)
}

func copyThread(t *Thread) *Thread {
	cp := *t
	cp.Messages = append([]llm.Message(nil), t.Messages...)
	return &cp
}
