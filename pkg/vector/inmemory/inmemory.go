// Package inmemory provides an in-process implementation of vector.Index
// for tests and local development. Unlike the persistent drivers it models
// lazy collection creation faithfully: CollectionExists is false until
// CreateCollection has been called.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/papercomputeco/kin/pkg/vector"
)

// Index implements vector.Index using an in-process map.
type Index struct {
	mu         sync.RWMutex
	created    bool
	dimensions uint

	// records maps record id -> record.
	records map[string]vector.Record
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{
		records: make(map[string]vector.Record),
	}
}

// CollectionExists reports whether CreateCollection has been called.
func (x *Index) CollectionExists(_ context.Context) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.created
}

// CreateCollection marks the collection created and pins its dimension.
func (x *Index) CreateCollection(_ context.Context, dimension uint) error {
	if dimension == 0 {
		return fmt.Errorf("dimension must be non-zero")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.created && x.dimensions != dimension {
		return fmt.Errorf("%w: collection dimension %d, requested %d",
			vector.ErrDimensionMismatch, x.dimensions, dimension)
	}

	x.created = true
	x.dimensions = dimension
	return nil
}

// Upsert writes a record, replacing any record with the same id.
func (x *Index) Upsert(_ context.Context, rec vector.Record) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.created {
		return fmt.Errorf("%w: collection does not exist", vector.ErrConnection)
	}

	if uint(len(rec.Vector)) != x.dimensions {
		return fmt.Errorf("%w: got %d, want %d",
			vector.ErrDimensionMismatch, len(rec.Vector), x.dimensions)
	}

	x.records[rec.ID] = rec
	return nil
}

// Search returns the k nearest records by cosine similarity.
func (x *Index) Search(_ context.Context, embedding []float32, k int) ([]vector.Hit, error) {
	if k <= 0 {
		k = 5
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if !x.created {
		return nil, nil
	}

	hits := make([]vector.Hit, 0, len(x.records))
	for _, rec := range x.records {
		hits = append(hits, vector.Hit{
			Record: rec,
			Score:  cosine(embedding, rec.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// Close is a no-op for the in-memory index.
func (x *Index) Close() error {
	return nil
}

// Len returns the number of stored records. Test helper.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// Get returns the record with the given id and whether it exists. Test helper.
func (x *Index) Get(id string) (vector.Record, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	rec, ok := x.records[id]
	return rec, ok
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Ensure Index implements vector.Index
var _ vector.Index = (*Index)(nil)
