// Package retriever provides hybrid retrieval over a vector store.
//
// Retrieval pools candidates from several query variants, rescores them
// with a blend of vector similarity, TF-IDF and fuzzy matching plus small
// domain boosts, then diversifies the top of the ranking with MMR.
package retriever

import "context"

// Result is a retrieved chunk with its composite relevance score.
type Result struct {
	// ID is the chunk identifier.
	ID string
	// Text is the chunk text as stored, including any label prefix.
	Text string
	// Metadata is the chunk metadata.
	Metadata map[string]any
	// Score is the composite relevance score. Scores are comparable
	// within a single Retrieve call only; TF-IDF statistics are
	// computed over the candidate pool of that call.
	Score float64
}

// Retriever retrieves the chunks most relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]*Result, error)
}
