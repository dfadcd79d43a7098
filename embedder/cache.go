package embedder

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/reglens/reglens/fingerprint"
)

// Cache maps content hashes of exact text to embedding vectors. It is
// constructed once at process start and injected into every component that
// embeds text, so repeated ingestions and queries reuse vectors without
// hidden global state. Entries live for the life of the process; there is
// no eviction, which is acceptable because the key is the exact text hash.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]float64
}

// NewCache creates an empty embedding cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]float64)}
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) get(hash string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.entries[hash]
	return vec, ok
}

func (c *Cache) put(hash string, vec []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = vec
}

// CachedEmbedder wraps an Embedder with a shared content-hash cache.
// Concurrent calls embedding the same new text issue exactly one backend
// request (singleflight around the miss-detection-and-fill step).
type CachedEmbedder struct {
	inner Embedder
	cache *Cache
	group singleflight.Group
}

// NewCachedEmbedder creates a caching wrapper around inner using the given
// shared cache.
func NewCachedEmbedder(inner Embedder, cache *Cache) *CachedEmbedder {
	if cache == nil {
		cache = NewCache()
	}
	return &CachedEmbedder{inner: inner, cache: cache}
}

// EmbedTexts embeds texts order-preservingly: one vector per input text,
// duplicates computed once and reused. A backend failure fails the whole
// call; nothing is cached for the failed text.
//
// Returned vectors are shared with the cache and must be treated as
// read-only.
func (e *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.embedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// GetEmbedding implements the Embedder interface.
func (e *CachedEmbedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	return e.embedOne(ctx, text)
}

// GetDimensions implements the Embedder interface.
func (e *CachedEmbedder) GetDimensions() int {
	return e.inner.GetDimensions()
}

func (e *CachedEmbedder) embedOne(ctx context.Context, text string) ([]float64, error) {
	hash := fingerprint.ContentHash(text)
	if vec, ok := e.cache.get(hash); ok {
		return vec, nil
	}

	v, err, _ := e.group.Do(hash, func() (any, error) {
		// Re-check under the flight: another caller may have filled the
		// cache between our miss and the flight starting.
		if vec, ok := e.cache.get(hash); ok {
			return vec, nil
		}
		vec, err := e.inner.GetEmbedding(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text: %w", err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("embedding backend returned empty vector")
		}
		e.cache.put(hash, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float64), nil
}
