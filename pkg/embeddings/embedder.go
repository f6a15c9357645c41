// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities. One Embedder instance is
// created at process start and shared by all turns; the embedding dimension
// is fixed for the process lifetime.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
