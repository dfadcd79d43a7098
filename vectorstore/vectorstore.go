// Package vectorstore provides interfaces for vector storage and similarity search.
package vectorstore

import (
	"context"

	"github.com/reglens/reglens/document"
)

// VectorStore defines the operations the ingestion and retrieval pipelines
// need from a vector index. Implementations rank Query results by cosine
// similarity and must be able to return stored embeddings alongside the
// results, which the hybrid retriever needs for rescoring and MMR.
type VectorStore interface {
	// Upsert stores chunks with their embeddings, replacing existing
	// entries with the same ID.
	Upsert(ctx context.Context, chunks []*document.Chunk) error

	// Query performs similarity search and returns the most similar
	// chunks, ranked by descending cosine similarity.
	Query(ctx context.Context, query *SearchQuery) (*SearchResult, error)

	// DeleteByFilter deletes all chunks whose metadata matches every
	// key-value pair in filter exactly.
	DeleteByFilter(ctx context.Context, filter map[string]any) error

	// Get retrieves chunks by ID or metadata filter.
	Get(ctx context.Context, opts ...GetOption) ([]*document.Chunk, error)

	// Count counts chunks matching the filter (all chunks when nil).
	Count(ctx context.Context, filter map[string]any) (int, error)

	// Close closes the vector store connection.
	Close() error
}

// SearchQuery represents a vector similarity search query.
type SearchQuery struct {
	// Vector is the query embedding vector.
	Vector []float64

	// Limit specifies the number of top results to return.
	Limit int

	// MinScore specifies the minimum similarity score threshold.
	// Zero means no threshold, so even negative-similarity candidates
	// stay in the result set.
	MinScore float64

	// Filter restricts results to chunks whose metadata matches every
	// key-value pair exactly. Nil means no filtering.
	Filter map[string]any

	// IncludeEmbeddings requests stored embeddings in the results.
	IncludeEmbeddings bool
}

// SearchResult represents the result of a vector similarity search.
type SearchResult struct {
	// Results contains the matching chunks with their similarity scores.
	Results []*ScoredChunk
}

// ScoredChunk represents a chunk with its similarity score.
type ScoredChunk struct {
	// Chunk is the matched chunk.
	Chunk *document.Chunk

	// Score is the cosine similarity (higher is more similar).
	Score float64
}

// GetOption represents a functional option for Get.
type GetOption func(*GetConfig)

// GetConfig holds the configuration for get operations.
type GetConfig struct {
	IDs               []string
	Filter            map[string]any
	Limit             int
	IncludeEmbeddings bool
}

// WithGetIDs restricts Get to specific chunk IDs.
func WithGetIDs(ids []string) GetOption {
	return func(c *GetConfig) {
		c.IDs = ids
	}
}

// WithGetFilter restricts Get to chunks matching the metadata filter.
func WithGetFilter(filter map[string]any) GetOption {
	return func(c *GetConfig) {
		c.Filter = filter
	}
}

// WithGetLimit caps the number of returned chunks. Zero means no limit.
func WithGetLimit(limit int) GetOption {
	return func(c *GetConfig) {
		c.Limit = limit
	}
}

// WithGetEmbeddings requests stored embeddings in the returned chunks.
func WithGetEmbeddings(include bool) GetOption {
	return func(c *GetConfig) {
		c.IncludeEmbeddings = include
	}
}

// ApplyGetOptions parses get options and returns a GetConfig.
func ApplyGetOptions(opts ...GetOption) *GetConfig {
	config := &GetConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}
