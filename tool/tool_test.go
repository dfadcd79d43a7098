package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/retriever"
)

// stubRetriever returns canned results.
type stubRetriever struct {
	results []*retriever.Result
	lastK   int
}

func (s *stubRetriever) Retrieve(ctx context.Context, question string, topK int) ([]*retriever.Result, error) {
	s.lastK = topK
	return s.results, nil
}

func TestRetrieveDocuments(t *testing.T) {
	stub := &stubRetriever{results: []*retriever.Result{
		{
			ID:       "csv:abc:R-1:c0:deadbeef00",
			Text:     "[CSV - rules.csv] title: KYC",
			Metadata: map[string]any{document.MetaPath: "/data/csv/rules.csv"},
			Score:    0.9,
		},
		{
			ID:       "txt:def:txt:c0:cafebabe00",
			Text:     "[TXT - note.txt] some note",
			Metadata: map[string]any{},
			Score:    0.5,
		},
	}}
	r := NewRetriever(stub)

	hits, err := r.RetrieveDocuments(context.Background(), "kyc", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, 6, stub.lastK, "zero topK uses the default")

	require.Equal(t, "/data/csv/rules.csv", hits[0].Source, "path preferred when present")
	require.Equal(t, "txt:def:txt:c0:cafebabe00", hits[1].Source, "falls back to chunk ID")
}

func TestPolicyChecker_Check(t *testing.T) {
	dir := t.TempDir()
	csv := `id,title,body
1,Key Rotation,Keys must be rotated every 90 days.
2,Data Retention,Logs are kept for one year.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policies.csv"), []byte(csv), 0o644))

	pc := NewPolicyChecker(dir)

	t.Run("case-insensitive match", func(t *testing.T) {
		matches, err := pc.Check("KEY ROTATION")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		require.Equal(t, "1", matches[0].ID)
		require.Equal(t, "Key Rotation", matches[0].Title)
		require.Equal(t, "Keys must be rotated every 90 days.", matches[0].Body)
	})

	t.Run("no match", func(t *testing.T) {
		matches, err := pc.Check("encryption at rest")
		require.NoError(t, err)
		require.Empty(t, matches)
	})
}

func TestPolicyChecker_NoCSVFiles(t *testing.T) {
	pc := NewPolicyChecker(t.TempDir())
	matches, err := pc.Check("anything")
	require.NoError(t, err)
	require.Empty(t, matches)
}
