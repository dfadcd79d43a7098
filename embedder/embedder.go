// Package embedder provides interfaces and implementations for text embedding.
package embedder

import "context"

// Embedder is the interface that all embedding backends must implement.
//
// A backend failure is a hard error for the call: callers must never
// substitute an empty or zero vector, since a corrupted vector would
// corrupt ranking downstream.
type Embedder interface {
	// GetEmbedding generates an embedding vector for the given text.
	GetEmbedding(ctx context.Context, text string) ([]float64, error)

	// GetDimensions returns the dimensionality of the embeddings produced
	// by this embedder. Returns 0 if dimensions are not known.
	GetDimensions() int
}
