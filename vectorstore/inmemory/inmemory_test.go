package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/vectorstore"
)

func newChunk(id string, vec []float64, meta map[string]any) *document.Chunk {
	return &document.Chunk{
		ID:        id,
		Text:      "text for " + id,
		Embedding: vec,
		Metadata:  meta,
	}
}

func TestUpsert_Validation(t *testing.T) {
	ctx := context.Background()
	vs := New()

	require.Error(t, vs.Upsert(ctx, []*document.Chunk{nil}))
	require.Error(t, vs.Upsert(ctx, []*document.Chunk{newChunk("", []float64{1}, nil)}))
	require.Error(t, vs.Upsert(ctx, []*document.Chunk{newChunk("a", nil, nil)}))
}

func TestUpsert_ReplacesByID(t *testing.T) {
	ctx := context.Background()
	vs := New()

	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{
		newChunk("a", []float64{1, 0}, map[string]any{"v": "1"}),
	}))
	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{
		newChunk("a", []float64{0, 1}, map[string]any{"v": "2"}),
	}))

	n, err := vs.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	chunks, err := vs.Get(ctx, vectorstore.WithGetIDs([]string{"a"}))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "2", chunks[0].Metadata["v"])
}

func TestQuery_RanksByCosine(t *testing.T) {
	ctx := context.Background()
	vs := New()

	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{
		newChunk("exact", []float64{1, 0}, nil),
		newChunk("close", []float64{0.9, 0.1}, nil),
		newChunk("orthogonal", []float64{0, 1}, nil),
	}))

	res, err := vs.Query(ctx, &vectorstore.SearchQuery{Vector: []float64{1, 0}, Limit: 3})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	require.Equal(t, "exact", res.Results[0].Chunk.ID)
	require.Equal(t, "close", res.Results[1].Chunk.ID)
	require.Equal(t, "orthogonal", res.Results[2].Chunk.ID)
	require.InDelta(t, 1.0, res.Results[0].Score, 1e-9)
}

func TestQuery_FilterAndMinScore(t *testing.T) {
	ctx := context.Background()
	vs := New()

	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{
		newChunk("sg", []float64{1, 0}, map[string]any{"jurisdiction": "Singapore"}),
		newChunk("eu", []float64{1, 0}, map[string]any{"jurisdiction": "EU"}),
		newChunk("far", []float64{0, 1}, map[string]any{"jurisdiction": "Singapore"}),
	}))

	res, err := vs.Query(ctx, &vectorstore.SearchQuery{
		Vector:   []float64{1, 0},
		Limit:    10,
		MinScore: 0.5,
		Filter:   map[string]any{"jurisdiction": "Singapore"},
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	require.Equal(t, "sg", res.Results[0].Chunk.ID)
}

func TestQuery_ZeroMinScoreKeepsNegativeScores(t *testing.T) {
	ctx := context.Background()
	vs := New()

	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{
		newChunk("aligned", []float64{1, 0}, nil),
		newChunk("opposite", []float64{-1, 0}, nil),
	}))

	res, err := vs.Query(ctx, &vectorstore.SearchQuery{Vector: []float64{1, 0}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	require.Equal(t, "aligned", res.Results[0].Chunk.ID)
	require.Equal(t, "opposite", res.Results[1].Chunk.ID)
	require.Less(t, res.Results[1].Score, 0.0)
}

func TestQuery_EmbeddingsOnlyWhenRequested(t *testing.T) {
	ctx := context.Background()
	vs := New()
	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{newChunk("a", []float64{1, 0}, nil)}))

	res, err := vs.Query(ctx, &vectorstore.SearchQuery{Vector: []float64{1, 0}})
	require.NoError(t, err)
	require.Nil(t, res.Results[0].Chunk.Embedding)

	res, err = vs.Query(ctx, &vectorstore.SearchQuery{Vector: []float64{1, 0}, IncludeEmbeddings: true})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0}, res.Results[0].Chunk.Embedding)
}

func TestQuery_InvalidInput(t *testing.T) {
	ctx := context.Background()
	vs := New()

	_, err := vs.Query(ctx, nil)
	require.Error(t, err)
	_, err = vs.Query(ctx, &vectorstore.SearchQuery{})
	require.Error(t, err)
}

func TestDeleteByFilter(t *testing.T) {
	ctx := context.Background()
	vs := New()

	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{
		newChunk("a", []float64{1, 0}, map[string]any{"source_type": "csv", "file_fingerprint": "f1"}),
		newChunk("b", []float64{1, 0}, map[string]any{"source_type": "csv", "file_fingerprint": "f2"}),
		newChunk("c", []float64{1, 0}, map[string]any{"source_type": "pdf", "file_fingerprint": "f1"}),
	}))

	require.NoError(t, vs.DeleteByFilter(ctx, map[string]any{
		"source_type": "csv", "file_fingerprint": "f1",
	}))

	n, err := vs.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	chunks, err := vs.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "b", chunks[0].ID)
	require.Equal(t, "c", chunks[1].ID)
}

func TestDeleteByFilter_EmptyFilterRejected(t *testing.T) {
	vs := New()
	require.Error(t, vs.DeleteByFilter(context.Background(), nil))
}

func TestGet_LimitAndFilter(t *testing.T) {
	ctx := context.Background()
	vs := New()

	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{
		newChunk("a", []float64{1}, map[string]any{"kind": "x"}),
		newChunk("b", []float64{1}, map[string]any{"kind": "x"}),
		newChunk("c", []float64{1}, map[string]any{"kind": "y"}),
	}))

	chunks, err := vs.Get(ctx,
		vectorstore.WithGetFilter(map[string]any{"kind": "x"}),
		vectorstore.WithGetLimit(1),
	)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "a", chunks[0].ID)
}

func TestCount_WithFilter(t *testing.T) {
	ctx := context.Background()
	vs := New()

	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{
		newChunk("a", []float64{1}, map[string]any{"kind": "x"}),
		newChunk("b", []float64{1}, map[string]any{"kind": "y"}),
	}))

	n, err := vs.Count(ctx, map[string]any{"kind": "y"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestClone_IsolatesStoredChunks(t *testing.T) {
	ctx := context.Background()
	vs := New()

	meta := map[string]any{"kind": "x"}
	chunk := newChunk("a", []float64{1, 0}, meta)
	require.NoError(t, vs.Upsert(ctx, []*document.Chunk{chunk}))

	// Mutating the caller's chunk must not affect the stored copy.
	meta["kind"] = "mutated"
	chunk.Embedding[0] = 99

	res, err := vs.Query(ctx, &vectorstore.SearchQuery{Vector: []float64{1, 0}, IncludeEmbeddings: true})
	require.NoError(t, err)
	require.Equal(t, "x", res.Results[0].Chunk.Metadata["kind"])
	require.Equal(t, []float64{1, 0}, res.Results[0].Chunk.Embedding)
}
