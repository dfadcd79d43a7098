package retriever

import "github.com/reglens/reglens/internal/vecmath"

// mmrSelect greedily picks k candidates balancing query relevance against
// redundancy with already chosen items. candidates holds indexes into
// embeddings; the returned slice preserves selection order.
func mmrSelect(candidates []int, queryVec []float64, embeddings [][]float64, k int, lambda float64) []int {
	chosen := make([]int, 0, k)
	remaining := make(map[int]struct{}, len(candidates))
	for _, i := range candidates {
		remaining[i] = struct{}{}
	}

	for len(remaining) > 0 && len(chosen) < k {
		best := -1e9
		bestIdx := -1
		// Iterate in candidate order so ties resolve deterministically.
		for _, i := range candidates {
			if _, ok := remaining[i]; !ok {
				continue
			}
			simQ := vecmath.Cosine(queryVec, embeddings[i])
			div := 0.0
			for _, j := range chosen {
				if s := vecmath.Cosine(embeddings[i], embeddings[j]); s > div {
					div = s
				}
			}
			score := lambda*simQ - (1-lambda)*div
			if score > best {
				best = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		chosen = append(chosen, bestIdx)
		delete(remaining, bestIdx)
	}
	return chosen
}
