package vector

import "errors"

var (
	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the vector index connection fails.
	ErrConnection = errors.New("vector index connection failed")

	// ErrDimensionMismatch is returned when a vector's length does not match
	// the collection's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
