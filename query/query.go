// Package query provides query normalization and expansion for retrieval.
//
// Expansion rewrites a user question into a small set of query variants:
// the original question plus canonical synonyms for the regulatory
// abbreviations it contains. The retriever searches all variants and
// merges the candidate pools.
package query

import (
	"regexp"
	"strings"
)

// DefaultMaxTerms is the default cap on expanded query variants.
const DefaultMaxTerms = 8

var whitespaceRE = regexp.MustCompile(`\s+`)

// Normalize collapses runs of whitespace into single spaces and trims
// the result.
func Normalize(q string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(q, " "))
}

// Expander rewrites a query into a list of variants to search. The first
// variant is always the original query.
type Expander interface {
	Expand(q string, maxTerms int) []string
}

// canonRule maps an abbreviation pattern to its canonical synonyms.
type canonRule struct {
	pattern *regexp.Regexp
	terms   []string
}

// canonRules is the canonical expansion table for regulatory vocabulary.
// Patterns match against the lowercased query.
var canonRules = []canonRule{
	{regexp.MustCompile(`\bkyc\b`), []string{"know your customer", "customer due diligence", "e-kyc", "identity verification"}},
	{regexp.MustCompile(`\baml\b`), []string{"anti-money laundering", "money laundering controls"}},
	{regexp.MustCompile(`\bpep\b`), []string{"politically exposed person", "pep screening"}},
	{regexp.MustCompile(`\bgdpr\b`), []string{"data protection", "privacy regulation"}},
	{regexp.MustCompile(`\bcross[- ]?border\b`), []string{"international", "x-border", "overseas transfer"}},
	{regexp.MustCompile(`\bbiometric\b`), []string{"face id", "fingerprint", "e-kyc"}},
	{regexp.MustCompile(`\bdigital banking\b`), []string{"online banking", "fintech"}},
	{regexp.MustCompile(`\bdbsr\b`), []string{"digital banking supervision regulation", "eu digital regulation"}},
}

var _ Expander = (*DomainExpander)(nil)

// DomainExpander expands queries using the canonical regulatory
// vocabulary table plus contextual variants for temporal and risk
// questions.
type DomainExpander struct{}

// NewDomainExpander creates a new DomainExpander.
func NewDomainExpander() *DomainExpander {
	return &DomainExpander{}
}

// Expand implements the Expander interface. The original query is always
// first; synonyms follow in table order, deduplicated, capped at
// maxTerms (DefaultMaxTerms when maxTerms <= 0).
func (e *DomainExpander) Expand(q string, maxTerms int) []string {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}

	terms := []string{q}
	low := strings.ToLower(q)
	for _, rule := range canonRules {
		if rule.pattern.MatchString(low) {
			terms = append(terms, rule.terms...)
		}
	}
	if strings.Contains(low, "effective") || strings.Contains(low, "when") {
		terms = append(terms, "effective date")
	}
	if strings.Contains(low, "risk") {
		terms = append(terms, "risk level")
	}

	// Deduplicate, keeping first-seen order.
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > maxTerms {
		out = out[:maxTerms]
	}
	return out
}
