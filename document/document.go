// Package document defines the chunk type shared by ingestion and retrieval.
package document

import "time"

// Chunk is the atomic retrievable unit: a bounded passage of text derived
// from a source document, together with its embedding and metadata.
type Chunk struct {
	// ID is the deterministic identifier of the chunk. Re-ingesting the
	// same file yields the same IDs.
	ID string `json:"id"`

	// Text is the passage content, optionally prefixed with a source label
	// to help lexical matching.
	Text string `json:"text"`

	// Embedding is the dense vector for the chunk text. It may be empty
	// until the chunk has been embedded.
	Embedding []float64 `json:"embedding,omitempty"`

	// Metadata maps well-known keys (see metadata.go) to scalar values.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CreatedAt is the creation timestamp of the chunk.
	CreatedAt time.Time `json:"created_at,omitempty"`

	// UpdatedAt is the last update timestamp of the chunk.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsEmpty checks if the chunk has no content.
func (c *Chunk) IsEmpty() bool {
	return c == nil || c.Text == ""
}

// Clone creates a deep copy of the chunk.
func (c *Chunk) Clone() *Chunk {
	clone := &Chunk{
		ID:        c.ID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Embedding != nil {
		clone.Embedding = make([]float64, len(c.Embedding))
		copy(clone.Embedding, c.Embedding)
	}
	if c.Metadata != nil {
		clone.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// SourceType returns the source_type metadata value, falling back to the
// legacy source key, or "" when neither is present.
func (c *Chunk) SourceType() string {
	if c == nil || c.Metadata == nil {
		return ""
	}
	if v, ok := c.Metadata[MetaSourceType].(string); ok && v != "" {
		return v
	}
	if v, ok := c.Metadata[MetaSource].(string); ok {
		return v
	}
	return ""
}
