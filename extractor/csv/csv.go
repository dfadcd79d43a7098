// Package csv provides a CSV row extractor: each row becomes one logical
// document assembled from prioritized body fields.
package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/reglens/reglens/document"
)

// bodyFields is the prioritized list of columns used to assemble row text.
var bodyFields = []string{"title", "body", "description", "content", "summary"}

// keyFields is the prioritized list of id-like columns used as the stable
// per-row key.
var keyFields = []string{"record_id", "id", "reference_id"}

// metadataFields are the columns copied into chunk metadata when non-empty.
var metadataFields = []string{
	"record_id", "id", "reference_id",
	document.MetaJurisdiction, document.MetaCategory,
	document.MetaRiskLevel, document.MetaDocType, "compliance_owner",
	document.MetaEffectiveDate, "last_updated", "source_url", "section", "keywords",
}

// candidateDelimiters is the ordered fallback list tried when sniffing does
// not settle on a delimiter.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// Row is one logical document extracted from a CSV row.
type Row struct {
	// Key is the stable per-row key: an id-like column when present,
	// otherwise a positional fallback such as "row-3".
	Key string

	// Index is the 1-based row position in the file.
	Index int

	// Text is the assembled body text.
	Text string

	// Metadata holds the copied metadata columns.
	Metadata map[string]any
}

// Extractor extracts logical documents from CSV files row by row.
type Extractor struct{}

// New creates a new CSV row extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the name of this extractor.
func (e *Extractor) Name() string {
	return "CSVRowExtractor"
}

// ExtractRows reads the CSV at path and returns one Row per data row with
// non-empty assembled text. An undetectable dialect or empty header fails
// the file; individual malformed rows are skipped.
func (e *Extractor) ExtractRows(path string) ([]*Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := string(raw)

	header, records, err := parse(content)
	if err != nil {
		return nil, err
	}

	var rows []*Row
	for i, record := range records {
		rowIdx := i + 1
		fields := zip(header, record)

		text := assembleText(header, fields)
		if text == "" {
			continue
		}

		meta := make(map[string]any)
		for _, mf := range metadataFields {
			if v := strings.TrimSpace(fields[mf]); v != "" {
				meta[mf] = v
			}
		}

		rows = append(rows, &Row{
			Key:      rowKey(fields, fmt.Sprintf("row-%d", rowIdx)),
			Index:    rowIdx,
			Text:     text,
			Metadata: meta,
		})
	}
	return rows, nil
}

// parse detects the CSV dialect and returns the header and data records.
// Strategies are tried in order: sniffed delimiter first, then the fixed
// candidate list; the file fails only when no delimiter yields non-empty
// headers.
func parse(content string) ([]string, [][]string, error) {
	tried := make(map[rune]bool)
	order := make([]rune, 0, len(candidateDelimiters)+1)
	if d, ok := sniffDelimiter(content); ok {
		order = append(order, d)
		tried[d] = true
	}
	for _, d := range candidateDelimiters {
		if !tried[d] {
			order = append(order, d)
		}
	}

	for _, delim := range order {
		header, records, err := parseWith(content, delim)
		if err != nil {
			continue
		}
		if len(nonEmpty(header)) > 0 {
			return header, records, nil
		}
	}
	return nil, nil, fmt.Errorf("no candidate delimiter yields non-empty headers")
}

// sniffDelimiter guesses the delimiter as the candidate occurring most
// often in the header line.
func sniffDelimiter(content string) (rune, bool) {
	line, _, _ := strings.Cut(content, "\n")
	best, bestCount := rune(0), 0
	for _, d := range candidateDelimiters {
		if c := strings.Count(line, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best, bestCount > 0
}

func parseWith(content string, delim rune) ([]string, [][]string, error) {
	r := stdcsv.NewReader(strings.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty csv")
	}
	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return header, all[1:], nil
}

// assembleText builds the row text from prioritized body fields as
// "field: value" lines; keeping field labels helps lexical matching.
// When no prioritized field is present it falls back to concatenating all
// non-empty field values.
func assembleText(header []string, fields map[string]string) string {
	var parts []string
	for _, k := range bodyFields {
		if v := strings.TrimSpace(fields[k]); v != "" {
			parts = append(parts, k+": "+v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}
	// Last resort: concatenate any non-empty fields in column order.
	var values []string
	seen := make(map[string]bool)
	for _, h := range header {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		if v := strings.TrimSpace(fields[h]); v != "" {
			values = append(values, v)
		}
	}
	return strings.Join(values, " ")
}

// rowKey prefers a stable business key over the positional fallback.
func rowKey(fields map[string]string, fallback string) string {
	for _, k := range keyFields {
		if v := strings.TrimSpace(fields[k]); v != "" {
			return v
		}
	}
	return fallback
}

func zip(header, record []string) map[string]string {
	fields := make(map[string]string, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(record) {
			fields[h] = record[i]
		}
	}
	return fields
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
