// Package vector provides the vector index contract used by the long-term
// memory subsystem, and driver implementations for Qdrant, sqlite-vec, and
// an in-memory store.
package vector

import (
	"context"
	"time"
)

const (
	// DefaultCollectionName is the default collection holding memory records.
	DefaultCollectionName = "long_term_memory"

	// ProbeAttempts is the bounded retry count for the collection-existence
	// probe against a remote index.
	ProbeAttempts = 3

	// ProbeBackoff is the base backoff for the collection-existence probe;
	// attempt n sleeps n * ProbeBackoff.
	ProbeBackoff = 2 * time.Second
)

// Payload is the stored content of a memory record. The embedding itself is
// not duplicated here; it lives only in the index.
type Payload struct {
	// Text is the normalized fact statement.
	Text string `json:"text"`

	// Timestamp is when the record was created or last updated.
	Timestamp time.Time `json:"timestamp"`
}

// Record is a memory record keyed by an opaque id.
type Record struct {
	// ID is a unique identifier for the record. Upserting an existing ID
	// updates the record in place.
	ID string

	// Vector is the embedding of the payload text.
	Vector []float32

	// Payload is the stored content.
	Payload Payload
}

// Hit is a search result with its similarity score (cosine, higher = more
// similar).
type Hit struct {
	Record

	Score float32
}

// Index is a persistent nearest-neighbor store over a named collection.
// Implementations are safe for concurrent use across turns; Upsert is
// idempotent keyed by record id.
type Index interface {
	// CollectionExists reports whether the backing collection exists.
	// Implementations must tolerate transient unreachability with bounded
	// retry (ProbeAttempts, ProbeBackoff) and return false after exhausting
	// retries rather than erroring.
	CollectionExists(ctx context.Context) bool

	// CreateCollection creates the backing collection for vectors of the
	// given dimension. The dimension is fixed at process start; a mismatch
	// on later writes is a fatal misconfiguration, not a runtime error.
	CreateCollection(ctx context.Context, dimension uint) error

	// Upsert writes a record, replacing any record with the same id.
	Upsert(ctx context.Context, rec Record) error

	// Search returns the k nearest records ordered by descending similarity.
	// A missing collection yields an empty result, not an error.
	Search(ctx context.Context, embedding []float32, k int) ([]Hit, error)

	// Close releases any resources held by the index.
	Close() error
}
