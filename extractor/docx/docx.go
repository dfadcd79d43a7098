// Package docx provides a DOCX document extractor.
package docx

import (
	"os"
	"strings"

	"github.com/gonfva/docxlib"

	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/extractor"
	"github.com/reglens/reglens/log"
)

func init() {
	extractor.Register([]string{".docx"}, func() extractor.Extractor {
		return New()
	})
}

// Extractor reads DOCX files and joins their paragraph texts.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract implements the extractor.Extractor interface. Non-empty
// paragraphs are joined with blank-line separation. A structural parse
// failure yields empty text so the caller skips the file instead of
// aborting the batch.
func (e *Extractor) Extract(path string) (*extractor.Extraction, error) {
	meta := map[string]any{
		document.MetaSourceType: document.SourceTypeDOCX,
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	doc, err := docxlib.Parse(file, stat.Size())
	if err != nil {
		log.Warnf("docx parse failed for %s, skipping: %v", path, err)
		return &extractor.Extraction{Text: "", Metadata: meta}, nil
	}

	return &extractor.Extraction{
		Text:     paragraphsText(doc),
		Metadata: meta,
	}, nil
}

// Name returns the name of this extractor.
func (e *Extractor) Name() string {
	return "DOCXExtractor"
}

// paragraphsText joins non-empty paragraph texts with blank lines.
func paragraphsText(doc *docxlib.DocxLib) string {
	var paragraphs []string
	for _, paragraph := range doc.Paragraphs() {
		var b strings.Builder
		for _, child := range paragraph.Children() {
			if child.Run != nil && child.Run.Text != nil {
				appendRunText(&b, child.Run.Text.Text)
			}
			if child.Link != nil && child.Link.Run.Text != nil {
				appendRunText(&b, child.Link.Run.Text.Text)
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

func appendRunText(b *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(text)
}
