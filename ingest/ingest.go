// Package ingest turns source files into embedded, labeled chunks in a
// vector store.
//
// Files are dispatched by extension: CSV rows become one logical document
// each, everything else goes through the registered extractor for its
// extension. Chunk IDs are deterministic, so re-ingesting an unchanged
// file overwrites its previous chunks in place.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/reglens/reglens/chunking"
	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/extractor"
	csvx "github.com/reglens/reglens/extractor/csv"
	"github.com/reglens/reglens/fingerprint"
	"github.com/reglens/reglens/log"
	"github.com/reglens/reglens/vectorstore"

	// Register the built-in extractors.
	_ "github.com/reglens/reglens/extractor/docx"
	_ "github.com/reglens/reglens/extractor/pdf"
	_ "github.com/reglens/reglens/extractor/plaintext"
)

// chunkIDHashLen is the length of the content hash suffix in chunk IDs.
const chunkIDHashLen = 10

// TextEmbedder embeds a batch of texts, one vector per text, order
// preserved.
type TextEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Ingestor ingests files into a vector store.
type Ingestor struct {
	store    vectorstore.VectorStore
	embedder TextEmbedder
	chunker  chunking.Strategy
	workers  int
}

// Option represents a functional option for configuring Ingestor.
type Option func(*Ingestor)

// WithChunking sets the chunking strategy.
func WithChunking(s chunking.Strategy) Option {
	return func(in *Ingestor) {
		if s != nil {
			in.chunker = s
		}
	}
}

// WithWorkers sets the number of concurrent workers for directory
// ingestion.
func WithWorkers(n int) Option {
	return func(in *Ingestor) {
		if n > 0 {
			in.workers = n
		}
	}
}

// New creates a new Ingestor writing to the given store.
func New(store vectorstore.VectorStore, emb TextEmbedder, opts ...Option) *Ingestor {
	in := &Ingestor{
		store:    store,
		embedder: emb,
		chunker:  chunking.NewFixedSizeChunking(),
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// IngestFile ingests a single file, dispatching on its extension. When
// replace is true, chunks from a previous ingestion of the same file
// version are deleted first (best effort). Returns the number of chunks
// stored.
func (in *Ingestor) IngestFile(ctx context.Context, path string, replace bool) (int, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		return in.ingestCSV(ctx, path, replace)
	}

	ex, ok := extractor.Get(ext)
	if !ok {
		return 0, fmt.Errorf("no extractor registered for extension %q", ext)
	}

	extraction, err := ex.Extract(path)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", path, err)
	}
	if strings.TrimSpace(extraction.Text) == "" {
		log.Infof("ingest: %s has no extractable text, skipping", path)
		return 0, nil
	}

	sourceType := sourceTypeFor(ext, extraction.Metadata)
	fileFP := fingerprint.File(path)
	if replace {
		in.deletePrevious(ctx, path, sourceType, fileFP)
	}

	pieces := in.chunker.Split(extraction.Text)
	if len(pieces) == 0 {
		return 0, nil
	}

	fileName := filepath.Base(path)
	label := labelPrefix(sourceType, fileName)
	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	texts := make([]string, len(pieces))
	chunks := make([]*document.Chunk, len(pieces))
	for i, piece := range pieces {
		texts[i] = label + piece

		charCount := utf8.RuneCountInString(piece)
		meta := map[string]any{
			document.MetaSource:          sourceType,
			document.MetaSourceType:      sourceType,
			document.MetaFileName:        fileName,
			document.MetaPath:            path,
			document.MetaFileFingerprint: fileFP,
			document.MetaChunkIndex:      i,
			document.MetaChunkCharCount:  charCount,
			document.MetaIngestedAt:      now,
			document.MetaIngestRun:       runID,
		}
		for k, v := range extraction.Metadata {
			meta[k] = v
		}

		chunks[i] = &document.Chunk{
			ID:       chunkID(sourceType, fileFP, sourceType, i, charCount),
			Text:     texts[i],
			Metadata: meta,
		}
	}

	if err := in.embedAndStore(ctx, chunks, texts); err != nil {
		return 0, err
	}
	log.Infof("ingest: stored %d chunks from %s", len(chunks), path)
	return len(chunks), nil
}

// ingestCSV ingests a CSV file row by row. Every row with non-empty
// assembled text becomes one logical document, chunked independently.
func (in *Ingestor) ingestCSV(ctx context.Context, path string, replace bool) (int, error) {
	rows, err := csvx.New().ExtractRows(path)
	if err != nil {
		return 0, fmt.Errorf("extract csv %s: %w", path, err)
	}

	fileFP := fingerprint.File(path)
	if replace {
		in.deletePrevious(ctx, path, document.SourceTypeCSV, fileFP)
	}

	fileName := filepath.Base(path)
	label := labelPrefix(document.SourceTypeCSV, fileName)
	runID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	var texts []string
	var chunks []*document.Chunk
	for _, row := range rows {
		for i, piece := range in.chunker.Split(row.Text) {
			charCount := utf8.RuneCountInString(piece)
			meta := map[string]any{
				document.MetaSource:          document.SourceTypeCSV,
				document.MetaSourceType:      document.SourceTypeCSV,
				document.MetaFileName:        fileName,
				document.MetaPath:            path,
				document.MetaFileFingerprint: fileFP,
				document.MetaRowIndex:        row.Index,
				document.MetaChunkIndex:      i,
				document.MetaChunkCharCount:  charCount,
				document.MetaIngestedAt:      now,
				document.MetaIngestRun:       runID,
			}
			for k, v := range row.Metadata {
				meta[k] = v
			}

			texts = append(texts, label+piece)
			chunks = append(chunks, &document.Chunk{
				ID:       chunkID(document.SourceTypeCSV, fileFP, row.Key, i, charCount),
				Text:     label + piece,
				Metadata: meta,
			})
		}
	}
	if len(chunks) == 0 {
		log.Infof("ingest: %s has no usable rows, skipping", path)
		return 0, nil
	}

	if err := in.embedAndStore(ctx, chunks, texts); err != nil {
		return 0, err
	}
	log.Infof("ingest: stored %d chunks from %d rows of %s", len(chunks), len(rows), path)
	return len(chunks), nil
}

func (in *Ingestor) embedAndStore(ctx context.Context, chunks []*document.Chunk, texts []string) error {
	vecs, err := in.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	for i, vec := range vecs {
		chunks[i].Embedding = vec
	}
	if err := in.store.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}
	return nil
}

// deletePrevious removes chunks from an earlier ingestion of the same
// file version. Failures are logged and ingestion continues; the
// deterministic chunk IDs mean unchanged chunks get overwritten anyway.
func (in *Ingestor) deletePrevious(ctx context.Context, path, sourceType, fileFP string) {
	types := []string{sourceType}
	// A PDF may have been ingested through either extraction path.
	if sourceType == document.SourceTypePDF || sourceType == document.SourceTypePDFOCR {
		types = []string{document.SourceTypePDF, document.SourceTypePDFOCR}
	}
	for _, st := range types {
		filter := map[string]any{
			document.MetaSourceType:      st,
			document.MetaFileFingerprint: fileFP,
		}
		if err := in.store.DeleteByFilter(ctx, filter); err != nil {
			log.Warnf("ingest: delete previous chunks for %s (%s): %v", path, st, err)
		}
	}
}

// chunkID builds the deterministic chunk ID
// <type>:<fingerprint>:<key>:c<index>:<hash>.
func chunkID(sourceType, fileFP, key string, index, charCount int) string {
	basis := fmt.Sprintf("%s:%s:%s:%d:%d", sourceType, fileFP, key, index, charCount)
	return fmt.Sprintf("%s:%s:%s:c%d:%s",
		sourceType, fileFP, key, index, fingerprint.ShortHash(basis, chunkIDHashLen))
}

// labelPrefix builds the "[TYPE - name] " prefix prepended to stored
// chunk text to help lexical matching.
func labelPrefix(sourceType, fileName string) string {
	st := strings.ToUpper(sourceType)
	if st == "" {
		st = "DOC"
	}
	return fmt.Sprintf("[%s - %s] ", st, fileName)
}

// sourceTypeFor resolves the chunk source type, preferring what the
// extractor reported (the PDF extractor reports pdf_ocr after an OCR
// fallback).
func sourceTypeFor(ext string, meta map[string]any) string {
	if meta != nil {
		if v, ok := meta[document.MetaSourceType].(string); ok && v != "" {
			return v
		}
	}
	return strings.TrimPrefix(ext, ".")
}
