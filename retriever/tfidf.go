package retriever

import (
	"math"
	"regexp"
	"strings"
)

var tokenRE = regexp.MustCompile(`[a-z0-9]+`)

// tokenize lowercases s and splits it into alphanumeric tokens.
func tokenize(s string) []string {
	return tokenRE.FindAllString(strings.ToLower(s), -1)
}

// tfidfScores returns the TF-IDF cosine similarity between the query and
// each document. Statistics are local to the given document pool, so the
// scores are only comparable within one call.
func tfidfScores(query string, docs []string) []float64 {
	qTokens := tokenize(query)
	docTokens := make([][]string, len(docs))
	for i, d := range docs {
		docTokens[i] = tokenize(d)
	}

	// Document frequency over the pool.
	df := make(map[string]int)
	for _, toks := range docTokens {
		seen := make(map[string]struct{}, len(toks))
		for _, w := range toks {
			seen[w] = struct{}{}
		}
		for w := range seen {
			df[w]++
		}
	}
	n := len(docs)
	if n < 1 {
		n = 1
	}

	idf := func(w string) float64 {
		return math.Log(float64(n+1)/float64(1+df[w])) + 1.0
	}

	vecFrom := func(toks []string) map[string]float64 {
		counts := make(map[string]int, len(toks))
		for _, w := range toks {
			counts[w]++
		}
		denom := len(toks)
		if denom < 1 {
			denom = 1
		}
		v := make(map[string]float64, len(counts))
		for w, ct := range counts {
			v[w] = (float64(ct) / float64(denom)) * idf(w)
		}
		return v
	}

	qv := vecFrom(qTokens)
	qn := sparseNorm(qv) + 1e-9

	scores := make([]float64, len(docs))
	for i, toks := range docTokens {
		dv := vecFrom(toks)
		scores[i] = sparseDot(qv, dv) / (qn * (sparseNorm(dv) + 1e-9))
	}
	return scores
}

func sparseDot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for w, av := range a {
		dot += av * b[w]
	}
	return dot
}

func sparseNorm(v map[string]float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
