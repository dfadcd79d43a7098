package chunking

import "strings"

var (
	defaultChunkSize = 1000
	defaultOverlap   = 150
)

// FixedSizeChunking splits text into fixed-size windows with overlap.
// Window k starts at k*(size-overlap) and spans up to size characters, so
// consecutive windows share overlap characters and the sequence covers the
// whole input without gaps.
type FixedSizeChunking struct {
	chunkSize int
	overlap   int
}

// Option represents a functional option for configuring FixedSizeChunking.
type Option func(*FixedSizeChunking)

// WithChunkSize sets the maximum size of each chunk in characters.
func WithChunkSize(size int) Option {
	return func(fsc *FixedSizeChunking) {
		fsc.chunkSize = size
	}
}

// WithOverlap sets the number of characters shared between adjacent chunks.
func WithOverlap(overlap int) Option {
	return func(fsc *FixedSizeChunking) {
		fsc.overlap = overlap
	}
}

// NewFixedSizeChunking creates a new fixed-size chunking strategy with options.
func NewFixedSizeChunking(opts ...Option) *FixedSizeChunking {
	fsc := &FixedSizeChunking{
		chunkSize: defaultChunkSize,
		overlap:   defaultOverlap,
	}
	for _, opt := range opts {
		opt(fsc)
	}
	// Validate parameters.
	if fsc.chunkSize <= 0 {
		fsc.chunkSize = defaultChunkSize
	}
	if fsc.overlap < 0 {
		fsc.overlap = 0
	}
	if fsc.overlap >= fsc.chunkSize {
		fsc.overlap = min(defaultOverlap, fsc.chunkSize-1)
	}
	return fsc
}

// Split implements the Strategy interface. It is a pure function of
// (text, size, overlap): no hidden state, restartable. Whitespace-only
// windows are dropped; no window exceeds the chunk size.
func (f *FixedSizeChunking) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []string
	step := f.chunkSize - f.overlap
	for start := 0; start < n; start += step {
		end := min(start+f.chunkSize, n)
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
