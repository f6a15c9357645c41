package testutils

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/papercomputeco/kin/pkg/vector"
)

// MockIndex is a test vector index with scripted hits and failure injection.
// When Hits is nil, Search scores stored records against the query by exact
// vector equality (1.0) so dedup paths can be exercised deterministically.
type MockIndex struct {
	mu sync.Mutex

	// Exists is reported by CollectionExists.
	Exists bool

	// Records accumulates upserted records keyed by id.
	Records map[string]vector.Record

	// Hits, when non-nil, is returned verbatim (capped at k) by Search.
	Hits []vector.Hit

	// FailUpsert causes Upsert to return an error.
	FailUpsert bool

	// FailSearch causes Search to return an error.
	FailSearch bool

	// FailCreate causes CreateCollection to return an error.
	FailCreate bool
}

// NewMockIndex creates an empty mock index with no collection yet.
func NewMockIndex() *MockIndex {
	return &MockIndex{Records: make(map[string]vector.Record)}
}

func (m *MockIndex) CollectionExists(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Exists
}

func (m *MockIndex) CreateCollection(_ context.Context, _ uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreate {
		return fmt.Errorf("mock collection create failure")
	}

	m.Exists = true
	return nil
}

func (m *MockIndex) Upsert(_ context.Context, rec vector.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpsert {
		return fmt.Errorf("mock upsert failure")
	}

	m.Records[rec.ID] = rec
	return nil
}

func (m *MockIndex) Search(_ context.Context, embedding []float32, k int) ([]vector.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSearch {
		return nil, fmt.Errorf("mock search failure")
	}

	if m.Hits != nil {
		if len(m.Hits) > k {
			return m.Hits[:k], nil
		}
		return m.Hits, nil
	}

	hits := make([]vector.Hit, 0, len(m.Records))
	for _, rec := range m.Records {
		score := float32(0)
		if equalVectors(rec.Vector, embedding) {
			score = 1.0
		}
		hits = append(hits, vector.Hit{Record: rec, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

func (m *MockIndex) Close() error {
	return nil
}

// Len returns the number of stored records.
func (m *MockIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}

func equalVectors(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
