package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/sync/errgroup"

	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/embedder"
	"github.com/reglens/reglens/internal/vecmath"
	"github.com/reglens/reglens/log"
	"github.com/reglens/reglens/query"
	"github.com/reglens/reglens/vectorstore"
)

const (
	// defaultTopK is the default number of results returned.
	defaultTopK = 5
	// maxQueryVariants caps how many expanded variants are searched.
	maxQueryVariants = 3

	// Composite score weights.
	weightVector = 0.55
	weightTFIDF  = 0.25
	weightFuzzy  = 0.20

	// boostOCR keeps OCR-sourced chunks from being drowned out by
	// cleaner native text.
	boostOCR = 0.04
	// boostJurisdiction rewards chunks whose jurisdiction the question
	// names explicitly.
	boostJurisdiction = 0.05
	// boostHighRisk rewards high-risk chunks on risk questions.
	boostHighRisk = 0.05

	// mmrLambda balances relevance against diversity during selection.
	mmrLambda = 0.65
)

var _ Retriever = (*HybridRetriever)(nil)

// HybridRetriever implements hybrid retrieval over a vector store.
type HybridRetriever struct {
	store    vectorstore.VectorStore
	embedder embedder.Embedder
	expander query.Expander
}

// Option represents a functional option for configuring HybridRetriever.
type Option func(*HybridRetriever)

// WithExpander sets the query expander. Defaults to the domain expander.
func WithExpander(e query.Expander) Option {
	return func(r *HybridRetriever) {
		r.expander = e
	}
}

// New creates a new hybrid retriever backed by the given store and
// embedder.
func New(store vectorstore.VectorStore, emb embedder.Embedder, opts ...Option) *HybridRetriever {
	r := &HybridRetriever{
		store:    store,
		embedder: emb,
		expander: query.NewDomainExpander(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve implements the Retriever interface.
//
// The question is normalized and expanded into at most three variants.
// Each variant contributes a candidate pool from the vector store; the
// merged pool is rescored with the composite score and the best
// candidates are diversified with MMR. Results come back in selection
// order, carrying their composite scores.
func (r *HybridRetriever) Retrieve(ctx context.Context, question string, topK int) ([]*Result, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	q := query.Normalize(question)
	if q == "" {
		return []*Result{}, nil
	}

	variants := r.expander.Expand(q, maxQueryVariants)
	log.Debugf("retrieve: question %q expanded to %d variants", q, len(variants))

	variantVecs, err := r.embedVariants(ctx, variants)
	if err != nil {
		return nil, err
	}

	poolSize := topK * 6
	if poolSize < 30 {
		poolSize = 30
	}
	pool, err := r.collectCandidates(ctx, variantVecs, poolSize)
	if err != nil {
		return nil, err
	}
	if len(pool.ids) == 0 {
		return []*Result{}, nil
	}

	scores := r.scoreCandidates(q, variantVecs[0], pool)

	// Rank by composite score and keep a generous slice for MMR.
	ranked := make([]int, len(scores))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scores[ranked[a]] > scores[ranked[b]]
	})
	diversityPool := 5 * topK
	if diversityPool < 30 {
		diversityPool = 30
	}
	if len(ranked) > diversityPool {
		ranked = ranked[:diversityPool]
	}

	chosen := mmrSelect(ranked, variantVecs[0], pool.embeddings, topK, mmrLambda)

	results := make([]*Result, 0, len(chosen))
	for _, i := range chosen {
		results = append(results, &Result{
			ID:       pool.ids[i],
			Text:     pool.texts[i],
			Metadata: pool.metadata[i],
			Score:    scores[i],
		})
	}
	return results, nil
}

// embedVariants embeds every query variant concurrently, preserving
// variant order.
func (r *HybridRetriever) embedVariants(ctx context.Context, variants []string) ([][]float64, error) {
	vecs := make([][]float64, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		g.Go(func() error {
			vec, err := r.embedder.GetEmbedding(gctx, v)
			if err != nil {
				return fmt.Errorf("embed query variant %q: %w", v, err)
			}
			vecs[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vecs, nil
}

// candidatePool holds the merged, deduplicated candidates from all query
// variants. Slices are parallel.
type candidatePool struct {
	ids        []string
	texts      []string
	metadata   []map[string]any
	embeddings [][]float64
}

// collectCandidates queries the store once per variant vector and merges
// the results, keeping the first occurrence of each chunk ID.
func (r *HybridRetriever) collectCandidates(ctx context.Context, variantVecs [][]float64, limit int) (*candidatePool, error) {
	pool := &candidatePool{}
	seen := make(map[string]struct{})

	for _, vec := range variantVecs {
		result, err := r.store.Query(ctx, &vectorstore.SearchQuery{
			Vector:            vec,
			Limit:             limit,
			IncludeEmbeddings: true,
		})
		if err != nil {
			return nil, fmt.Errorf("query vector store: %w", err)
		}
		for _, sc := range result.Results {
			if _, ok := seen[sc.Chunk.ID]; ok {
				continue
			}
			seen[sc.Chunk.ID] = struct{}{}
			pool.ids = append(pool.ids, sc.Chunk.ID)
			pool.texts = append(pool.texts, sc.Chunk.Text)
			pool.metadata = append(pool.metadata, sc.Chunk.Metadata)
			pool.embeddings = append(pool.embeddings, sc.Chunk.Embedding)
		}
	}
	return pool, nil
}

// scoreCandidates computes the composite score for every pooled candidate
// against the first (original) variant vector.
func (r *HybridRetriever) scoreCandidates(q string, baseVec []float64, pool *candidatePool) []float64 {
	tfidf := tfidfScores(q, pool.texts)
	low := strings.ToLower(q)

	scores := make([]float64, len(pool.ids))
	for i := range pool.ids {
		vecScore := vecmath.Cosine(baseVec, pool.embeddings[i])
		fuzzyScore := float64(fuzzy.TokenSetRatio(q, pool.texts[i])) / 100.0

		scores[i] = weightVector*vecScore +
			weightTFIDF*tfidf[i] +
			weightFuzzy*fuzzyScore +
			domainBoost(low, pool.metadata[i])
	}
	return scores
}

// domainBoost returns the sum of the small metadata-driven boosts for a
// candidate given the lowercased question.
func domainBoost(lowQuestion string, meta map[string]any) float64 {
	var boost float64
	if meta == nil {
		return 0
	}

	sourceType := metaString(meta, document.MetaSourceType)
	if sourceType == "" {
		sourceType = metaString(meta, document.MetaSource)
	}
	if strings.Contains(strings.ToLower(sourceType), "ocr") {
		boost += boostOCR
	}

	if j := strings.ToLower(metaString(meta, document.MetaJurisdiction)); j != "" &&
		strings.Contains(lowQuestion, j) {
		boost += boostJurisdiction
	}

	if strings.Contains(lowQuestion, "risk") &&
		strings.EqualFold(metaString(meta, document.MetaRiskLevel), "high") {
		boost += boostHighRisk
	}
	return boost
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
