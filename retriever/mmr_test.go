package retriever

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMMRSelect_MostRelevantFirst(t *testing.T) {
	query := []float64{1, 0, 0}
	embeddings := [][]float64{
		{0, 1, 0},
		{1, 0, 0},
		{0.5, 0.5, 0},
	}
	chosen := mmrSelect([]int{0, 1, 2}, query, embeddings, 1, 0.65)
	require.Equal(t, []int{1}, chosen)
}

func TestMMRSelect_PenalizesRedundancy(t *testing.T) {
	query := []float64{1, 1, 0}
	embeddings := [][]float64{
		{1, 0.05, 0}, // most relevant
		{1, 0.04, 0}, // near duplicate of 0
		{0.05, 1, 0}, // less relevant but diverse
	}
	chosen := mmrSelect([]int{0, 1, 2}, query, embeddings, 2, 0.65)
	require.Equal(t, []int{0, 2}, chosen, "the near duplicate should lose to the diverse candidate")
}

func TestMMRSelect_KLargerThanCandidates(t *testing.T) {
	query := []float64{1, 0}
	embeddings := [][]float64{{1, 0}, {0, 1}}
	chosen := mmrSelect([]int{0, 1}, query, embeddings, 10, 0.65)
	require.Len(t, chosen, 2)
}

func TestMMRSelect_EmptyCandidates(t *testing.T) {
	require.Empty(t, mmrSelect(nil, []float64{1}, nil, 3, 0.65))
}
