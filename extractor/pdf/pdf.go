// Package pdf provides a PDF extractor with native text-layer extraction
// and an OCR fallback for scanned documents.
package pdf

import (
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/extractor"
	"github.com/reglens/reglens/log"
)

func init() {
	extractor.Register([]string{".pdf"}, func() extractor.Extractor {
		return New()
	})
}

const (
	// DefaultMaxPages bounds extraction and OCR cost per file.
	DefaultMaxPages = 300
	// DefaultMinNativeLen is the trimmed native-text length below which a
	// PDF is treated as scanned and sent through OCR.
	DefaultMinNativeLen = 200
	// DefaultDPI is the page render resolution for OCR.
	DefaultDPI = 300
	// DefaultLanguage is the OCR language.
	DefaultLanguage = "eng"
)

// OCREngine recognizes text in a rendered page image.
type OCREngine interface {
	// Recognize returns the text found in the PNG-encoded page image.
	Recognize(image []byte) (string, error)

	// Close releases engine resources.
	Close() error
}

// renderFunc renders up to maxPages pages of the PDF at path to PNG bytes.
// A nil entry marks a page that failed to render.
type renderFunc func(path string, dpi, maxPages int) ([][]byte, error)

// Extractor extracts text from PDF files, preferring the native text layer
// and falling back to OCR when the document appears to be scanned.
type Extractor struct {
	maxPages     int
	minNativeLen int
	dpi          int
	lang         string
	engine       OCREngine
	render       renderFunc
}

// Option represents a functional option for configuring the PDF extractor.
type Option func(*Extractor)

// WithMaxPages caps the number of pages processed per file.
func WithMaxPages(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithMinNativeLen sets the native-text length threshold below which the
// OCR fallback is used.
func WithMinNativeLen(n int) Option {
	return func(e *Extractor) {
		e.minNativeLen = n
	}
}

// WithDPI sets the page render resolution for OCR.
func WithDPI(dpi int) Option {
	return func(e *Extractor) {
		if dpi > 0 {
			e.dpi = dpi
		}
	}
}

// WithLanguage sets the OCR language.
func WithLanguage(lang string) Option {
	return func(e *Extractor) {
		if lang != "" {
			e.lang = lang
		}
	}
}

// WithOCREngine sets a custom OCR engine. By default a Tesseract client is
// created lazily on the first OCR fallback.
func WithOCREngine(engine OCREngine) Option {
	return func(e *Extractor) {
		e.engine = engine
	}
}

// New creates a new PDF extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxPages:     DefaultMaxPages,
		minNativeLen: DefaultMinNativeLen,
		dpi:          DefaultDPI,
		lang:         DefaultLanguage,
		render:       renderPages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract implements the extractor.Extractor interface. It tries the
// native text layer page by page first; when the concatenated native text
// is shorter than the threshold it renders each page and runs OCR, again
// with per-page failure tolerance.
func (e *Extractor) Extract(path string) (*extractor.Extraction, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	meta := map[string]any{
		document.MetaSourceType: document.SourceTypePDF,
		document.MetaUsedOCR:    false,
		document.MetaOCRDPI:     e.dpi,
		document.MetaOCRLang:    e.lang,
	}

	native := e.nativeText(path)
	if len(strings.TrimSpace(native)) >= e.minNativeLen {
		return &extractor.Extraction{Text: native, Metadata: meta}, nil
	}

	text, ok := e.ocrText(path)
	if !ok {
		// OCR unavailable: return whatever the text layer had.
		return &extractor.Extraction{Text: native, Metadata: meta}, nil
	}
	meta[document.MetaSourceType] = document.SourceTypePDFOCR
	meta[document.MetaUsedOCR] = true
	return &extractor.Extraction{Text: text, Metadata: meta}, nil
}

// Name returns the name of this extractor.
func (e *Extractor) Name() string {
	return "PDFExtractor"
}

// nativeText extracts the text layer page by page. A page that fails to
// extract contributes an empty string, not a failed file.
func (e *Extractor) nativeText(path string) string {
	file, reader, err := pdf.Open(path)
	if err != nil {
		log.Warnf("pdf open failed for %s: %v", path, err)
		return ""
	}
	defer file.Close()

	var b strings.Builder
	totalPage := min(reader.NumPage(), e.maxPages)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Debugf("pdf text extraction failed for %s page %d: %v", path, pageIndex, err)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

// ocrText renders pages and recognizes them one by one. It reports ok=false
// when neither rendering nor an engine is available.
func (e *Extractor) ocrText(path string) (string, bool) {
	images, err := e.render(path, e.dpi, e.maxPages)
	if err != nil {
		log.Warnf("pdf render failed for %s: %v", path, err)
		return "", false
	}

	engine := e.engine
	if engine == nil {
		engine, err = newTesseractEngine(e.lang)
		if err != nil {
			log.Warnf("ocr engine unavailable: %v", err)
			return "", false
		}
		defer engine.Close()
	}

	var pages []string
	for i, img := range images {
		if img == nil {
			pages = append(pages, "")
			continue
		}
		text, err := engine.Recognize(img)
		if err != nil {
			log.Debugf("ocr failed for %s page %d: %v", path, i+1, err)
			text = ""
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), true
}
