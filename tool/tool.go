// Package tool provides the agent-facing helpers built on top of
// retrieval: a document fetcher that trims results down to what an agent
// needs, and a keyword policy checker over the ingested CSV data.
package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/reglens/reglens/document"
	csvx "github.com/reglens/reglens/extractor/csv"
	"github.com/reglens/reglens/retriever"
)

// defaultRetrieveTopK is the default result count for document retrieval.
const defaultRetrieveTopK = 6

// DocumentHit is one retrieved document in compact, agent-friendly form.
type DocumentHit struct {
	// Text is the chunk text.
	Text string `json:"text"`
	// Source is the originating file path, falling back to the chunk ID.
	Source string `json:"source"`
	// Metadata is the chunk metadata.
	Metadata map[string]any `json:"meta"`
}

// Retriever wraps a retriever.Retriever for agent use.
type Retriever struct {
	inner retriever.Retriever
}

// NewRetriever creates a retrieval tool over the given retriever.
func NewRetriever(inner retriever.Retriever) *Retriever {
	return &Retriever{inner: inner}
}

// RetrieveDocuments fetches the topK most relevant chunks for the query
// in compact form. topK defaults when non-positive.
func (r *Retriever) RetrieveDocuments(ctx context.Context, query string, topK int) ([]*DocumentHit, error) {
	if topK <= 0 {
		topK = defaultRetrieveTopK
	}
	results, err := r.inner.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	hits := make([]*DocumentHit, 0, len(results))
	for _, res := range results {
		source := res.ID
		if p, ok := res.Metadata[document.MetaPath].(string); ok && p != "" {
			source = p
		}
		hits = append(hits, &DocumentHit{
			Text:     res.Text,
			Source:   source,
			Metadata: res.Metadata,
		})
	}
	return hits, nil
}

// PolicyMatch is one CSV row matching a policy rule lookup.
type PolicyMatch struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PolicyChecker performs keyword lookups over CSV policy files.
type PolicyChecker struct {
	csvDir string
}

// NewPolicyChecker creates a policy checker reading CSV files from
// csvDir.
func NewPolicyChecker(csvDir string) *PolicyChecker {
	return &PolicyChecker{csvDir: csvDir}
}

// Check returns the rows of the first CSV file in the directory whose
// body text contains the rule, case-insensitively. No CSV files means no
// matches, not an error.
func (pc *PolicyChecker) Check(rule string) ([]*PolicyMatch, error) {
	paths, err := filepath.Glob(filepath.Join(pc.csvDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list csv files: %w", err)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return []*PolicyMatch{}, nil
	}
	path := paths[0]
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	rows, err := csvx.New().ExtractRows(path)
	if err != nil {
		return nil, fmt.Errorf("read policy csv %s: %w", path, err)
	}

	needle := strings.ToLower(rule)
	matches := make([]*PolicyMatch, 0)
	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row.Text), needle) {
			continue
		}
		matches = append(matches, &PolicyMatch{
			ID:    metaString(row.Metadata, "id"),
			Title: bodyField(row.Text, "title"),
			Body:  bodyField(row.Text, "body"),
		})
	}
	return matches, nil
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// bodyField pulls a "field: value" line out of assembled row text.
func bodyField(text, field string) string {
	prefix := field + ": "
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	return ""
}
