// Package vecmath provides the small numeric routines shared by the vector
// stores and the hybrid retriever.
package vecmath

import "math"

// Cosine returns the cosine similarity between two vectors. Mismatched or
// zero-length inputs score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := 0; i < len(a); i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
