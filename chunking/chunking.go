// Package chunking provides text chunking strategies for ingestion.
package chunking

// Strategy defines the interface for text chunking strategies.
type Strategy interface {
	// Split cuts text into ordered passages according to the strategy's
	// algorithm. The returned passages contain no empty or whitespace-only
	// entries.
	Split(text string) []string
}
