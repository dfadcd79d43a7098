// Package extractor defines per-format document extractors that turn a
// source file into a flat text string plus source metadata.
package extractor

// Extraction is the result of extracting one logical unit from a file.
type Extraction struct {
	// Text is the extracted flat text. Empty text means the file produced
	// nothing usable and should be skipped, not treated as an error.
	Text string

	// Metadata carries extraction facts (OCR usage, parameters) to be
	// merged into chunk metadata.
	Metadata map[string]any
}

// Extractor converts a whole file into a single extraction.
// Formats with multiple logical units per file (CSV rows) expose their own
// entry points instead.
type Extractor interface {
	// Extract reads the file at path and returns its text and metadata.
	// Localized problems (a page, an encoding) degrade the text rather
	// than failing the call; a non-nil error means the file itself is
	// unreadable.
	Extract(path string) (*Extraction, error)

	// Name returns the name of this extractor.
	Name() string
}
