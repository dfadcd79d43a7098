// Package inmemory provides an in-memory vector store implementation.
// It backs tests and small corpora; persistent deployments use the
// pgvector store.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/internal/vecmath"
	"github.com/reglens/reglens/vectorstore"
)

var (
	// errChunkCannotBeNil is the error when a chunk is nil.
	errChunkCannotBeNil = errors.New("chunk cannot be nil")
	// errChunkIDCannotBeEmpty is the error when a chunk ID is empty.
	errChunkIDCannotBeEmpty = errors.New("chunk ID cannot be empty")
	// errEmbeddingCannotBeEmpty is the error when an embedding is empty.
	errEmbeddingCannotBeEmpty = errors.New("embedding cannot be empty")

	// defaultMaxResults is the default maximum number of search results.
	defaultMaxResults = 10
)

var _ vectorstore.VectorStore = (*VectorStore)(nil)

// VectorStore implements the vectorstore.VectorStore interface using
// in-memory storage with exact cosine search.
type VectorStore struct {
	chunks map[string]*document.Chunk
	mutex  sync.RWMutex

	// maxResults is the maximum number of search results.
	maxResults int
}

// Option represents a functional option for configuring VectorStore.
type Option func(*VectorStore)

// WithMaxResults sets the maximum number of search results.
func WithMaxResults(maxResults int) Option {
	return func(vs *VectorStore) {
		if maxResults <= 0 {
			maxResults = defaultMaxResults
		}
		vs.maxResults = maxResults
	}
}

// New creates a new in-memory vector store instance with options.
func New(opts ...Option) *VectorStore {
	vs := &VectorStore{
		chunks:     make(map[string]*document.Chunk),
		maxResults: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(vs)
	}
	return vs
}

// Upsert implements the vectorstore.VectorStore interface.
func (vs *VectorStore) Upsert(ctx context.Context, chunks []*document.Chunk) error {
	vs.mutex.Lock()
	defer vs.mutex.Unlock()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		if chunk == nil {
			return errChunkCannotBeNil
		}
		if chunk.ID == "" {
			return errChunkIDCannotBeEmpty
		}
		if len(chunk.Embedding) == 0 {
			return errEmbeddingCannotBeEmpty
		}

		cloned := chunk.Clone()
		if existing, ok := vs.chunks[chunk.ID]; ok {
			cloned.CreatedAt = existing.CreatedAt
		} else if cloned.CreatedAt.IsZero() {
			cloned.CreatedAt = now
		}
		cloned.UpdatedAt = now
		vs.chunks[chunk.ID] = cloned
	}
	return nil
}

// Query implements the vectorstore.VectorStore interface.
func (vs *VectorStore) Query(ctx context.Context, query *vectorstore.SearchQuery) (*vectorstore.SearchResult, error) {
	if query == nil {
		return nil, errors.New("query cannot be nil")
	}
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}

	vs.mutex.RLock()
	defer vs.mutex.RUnlock()

	var results []*vectorstore.ScoredChunk
	for _, chunk := range vs.chunks {
		if len(chunk.Embedding) != len(query.Vector) {
			continue
		}
		if !matchesMetadata(chunk, query.Filter) {
			continue
		}
		score := vecmath.Cosine(query.Vector, chunk.Embedding)
		if query.MinScore > 0 && score < query.MinScore {
			continue
		}
		result := chunk.Clone()
		if !query.IncludeEmbeddings {
			result.Embedding = nil
		}
		results = append(results, &vectorstore.ScoredChunk{
			Chunk: result,
			Score: score,
		})
	}

	// Sort by score (descending).
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	limit := vs.getMaxResult(query.Limit)
	if len(results) > limit {
		results = results[:limit]
	}
	return &vectorstore.SearchResult{Results: results}, nil
}

// DeleteByFilter implements the vectorstore.VectorStore interface.
func (vs *VectorStore) DeleteByFilter(ctx context.Context, filter map[string]any) error {
	if len(filter) == 0 {
		return fmt.Errorf("inmemory delete by filter: no filter conditions specified")
	}

	vs.mutex.Lock()
	defer vs.mutex.Unlock()

	var toDelete []string
	for id, chunk := range vs.chunks {
		if matchesMetadata(chunk, filter) {
			toDelete = append(toDelete, id)
		}
	}
	for _, id := range toDelete {
		delete(vs.chunks, id)
	}
	return nil
}

// Get implements the vectorstore.VectorStore interface.
func (vs *VectorStore) Get(ctx context.Context, opts ...vectorstore.GetOption) ([]*document.Chunk, error) {
	config := vectorstore.ApplyGetOptions(opts...)

	vs.mutex.RLock()
	defer vs.mutex.RUnlock()

	var matched []*document.Chunk
	for id, chunk := range vs.chunks {
		if len(config.IDs) > 0 && !containsString(config.IDs, id) {
			continue
		}
		if !matchesMetadata(chunk, config.Filter) {
			continue
		}
		result := chunk.Clone()
		if !config.IncludeEmbeddings {
			result.Embedding = nil
		}
		matched = append(matched, result)
	}

	// Stable order for callers and tests.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID < matched[j].ID
	})
	if config.Limit > 0 && len(matched) > config.Limit {
		matched = matched[:config.Limit]
	}
	return matched, nil
}

// Count implements the vectorstore.VectorStore interface.
func (vs *VectorStore) Count(ctx context.Context, filter map[string]any) (int, error) {
	vs.mutex.RLock()
	defer vs.mutex.RUnlock()

	if len(filter) == 0 {
		return len(vs.chunks), nil
	}
	count := 0
	for _, chunk := range vs.chunks {
		if matchesMetadata(chunk, filter) {
			count++
		}
	}
	return count, nil
}

// Close implements the vectorstore.VectorStore interface.
func (vs *VectorStore) Close() error {
	vs.mutex.Lock()
	defer vs.mutex.Unlock()

	vs.chunks = nil
	return nil
}

// matchesMetadata checks whether a chunk's metadata matches every key-value
// pair in filter exactly.
func matchesMetadata(chunk *document.Chunk, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}
	if chunk.Metadata == nil {
		return false
	}
	for key, value := range filter {
		stored, ok := chunk.Metadata[key]
		if !ok || !reflect.DeepEqual(stored, value) {
			return false
		}
	}
	return true
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func (vs *VectorStore) getMaxResult(maxResults int) int {
	if maxResults <= 0 {
		return vs.maxResults
	}
	return maxResults
}
