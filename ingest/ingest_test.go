package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/reglens/reglens/chunking"
	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/vectorstore"
	"github.com/reglens/reglens/vectorstore/inmemory"
)

// stubEmbedder returns a fixed-length vector derived from the text.
type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	vecs := make([][]float64, len(texts))
	for i, t := range texts {
		vecs[i] = []float64{float64(len(t)), 1}
	}
	return vecs, nil
}

func newTestIngestor(store vectorstore.VectorStore) *Ingestor {
	return New(store, stubEmbedder{},
		WithChunking(chunking.NewFixedSizeChunking(
			chunking.WithChunkSize(50),
			chunking.WithOverlap(10),
		)),
	)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestFile_Txt(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	path := writeFile(t, t.TempDir(), "policy.txt",
		"All customers must complete identity verification before onboarding.")

	n, err := newTestIngestor(store).IngestFile(ctx, path, true)
	require.NoError(t, err)
	require.Greater(t, n, 0)

	chunks, err := store.Get(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, n)

	first := chunks[0]
	require.True(t, strings.HasPrefix(first.Text, "[TXT - policy.txt] "))
	require.Equal(t, "txt", first.Metadata[document.MetaSourceType])
	require.Equal(t, "policy.txt", first.Metadata[document.MetaFileName])
	require.NotEmpty(t, first.Metadata[document.MetaFileFingerprint])
	require.NotEmpty(t, first.Metadata[document.MetaIngestedAt])
	require.NotEmpty(t, first.Metadata[document.MetaIngestRun])
	require.True(t, strings.HasPrefix(first.ID, "txt:"))
}

func TestIngestFile_CSVRows(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	path := writeFile(t, t.TempDir(), "rules.csv",
		`record_id,title,body,jurisdiction,risk_level
R-1,KYC,Verify every customer identity.,Singapore,high
R-2,AML,Report suspicious transactions.,EU,medium
R-3,GDPR,Protect personal data.,EU,low
`)

	n, err := newTestIngestor(store).IngestFile(ctx, path, true)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	chunks, err := store.Get(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	byRow := make(map[int]*document.Chunk)
	for _, c := range chunks {
		require.True(t, strings.HasPrefix(c.Text, "[CSV - rules.csv] "))
		require.Equal(t, document.SourceTypeCSV, c.Metadata[document.MetaSourceType])
		row, ok := c.Metadata[document.MetaRowIndex].(int)
		require.True(t, ok)
		byRow[row] = c
	}

	require.Equal(t, "Singapore", byRow[1].Metadata[document.MetaJurisdiction])
	require.Equal(t, "high", byRow[1].Metadata[document.MetaRiskLevel])
	require.Contains(t, byRow[1].ID, ":R-1:")
	require.Contains(t, byRow[2].ID, ":R-2:")
}

func TestIngestFile_CharCountIsRunes(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	path := writeFile(t, t.TempDir(), "accents.txt",
		"données financières réglementées")

	n, err := newTestIngestor(store).IngestFile(ctx, path, true)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	chunks, err := store.Get(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	piece := strings.TrimPrefix(chunks[0].Text, "[TXT - accents.txt] ")
	runes := utf8.RuneCountInString(piece)
	require.Less(t, runes, len(piece))
	require.Equal(t, runes, chunks[0].Metadata[document.MetaChunkCharCount])
}

func TestIngestFile_DeterministicIDs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", "stable content for id checks")

	store1 := inmemory.New()
	_, err := newTestIngestor(store1).IngestFile(ctx, path, true)
	require.NoError(t, err)
	chunks1, err := store1.Get(ctx)
	require.NoError(t, err)

	store2 := inmemory.New()
	_, err = newTestIngestor(store2).IngestFile(ctx, path, true)
	require.NoError(t, err)
	chunks2, err := store2.Get(ctx)
	require.NoError(t, err)

	require.Equal(t, len(chunks1), len(chunks2))
	for i := range chunks1 {
		require.Equal(t, chunks1[i].ID, chunks2[i].ID)
	}
}

func TestIngestFile_ReingestDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	path := writeFile(t, t.TempDir(), "doc.txt", "identical content ingested twice")
	ing := newTestIngestor(store)

	n1, err := ing.IngestFile(ctx, path, true)
	require.NoError(t, err)
	n2, err := ing.IngestFile(ctx, path, true)
	require.NoError(t, err)
	require.Equal(t, n1, n2)

	total, err := store.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, n1, total)
}

func TestIngestFile_UnsupportedExtension(t *testing.T) {
	store := inmemory.New()
	path := writeFile(t, t.TempDir(), "image.png", "not really a png")

	_, err := newTestIngestor(store).IngestFile(context.Background(), path, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no extractor registered")
}

func TestIngestFile_EmptyFileStoresNothing(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	path := writeFile(t, t.TempDir(), "empty.txt", "   \n  ")

	n, err := newTestIngestor(store).IngestFile(ctx, path, true)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	total, err := store.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 0, total)
}

func TestIngestDir(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "first document body")
	writeFile(t, dir, "b.csv", "id,title,body\n1,Rule,Some rule text\n")
	writeFile(t, dir, "ignored.png", "binary junk")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "c.txt", "nested document body")

	n, err := newTestIngestor(store).IngestDir(ctx, dir, "", true)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	sources := map[string]int{}
	chunks, err := store.Get(ctx)
	require.NoError(t, err)
	for _, c := range chunks {
		st, _ := c.Metadata[document.MetaSourceType].(string)
		sources[st]++
	}
	require.Equal(t, 2, sources["txt"])
	require.Equal(t, 1, sources["csv"])
}

func TestIngestDir_PatternFilters(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "text document")
	writeFile(t, dir, "b.csv", "id,body\n1,row text\n")

	n, err := newTestIngestor(store).IngestDir(ctx, dir, "**/*.csv", true)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestLabelPrefix(t *testing.T) {
	require.Equal(t, "[CSV - rules.csv] ", labelPrefix("csv", "rules.csv"))
	require.Equal(t, "[PDF_OCR - scan.pdf] ", labelPrefix("pdf_ocr", "scan.pdf"))
	require.Equal(t, "[DOC - x] ", labelPrefix("", "x"))
}

func TestChunkID_Shape(t *testing.T) {
	id := chunkID("csv", "abcdef123456", "R-1", 0, 42)
	parts := strings.Split(id, ":")
	require.Len(t, parts, 5)
	require.Equal(t, "csv", parts[0])
	require.Equal(t, "abcdef123456", parts[1])
	require.Equal(t, "R-1", parts[2])
	require.Equal(t, "c0", parts[3])
	require.Len(t, parts[4], 10)

	require.Equal(t, id, chunkID("csv", "abcdef123456", "R-1", 0, 42))
	require.NotEqual(t, id, chunkID("csv", "abcdef123456", "R-1", 1, 42))
}
