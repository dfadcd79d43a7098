package pdf

import (
	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

// tesseractEngine is the default OCREngine backed by a Tesseract client.
type tesseractEngine struct {
	client *gosseract.Client
}

func newTesseractEngine(lang string) (*tesseractEngine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, err
	}
	return &tesseractEngine{client: client}, nil
}

// Recognize implements the OCREngine interface.
func (t *tesseractEngine) Recognize(image []byte) (string, error) {
	if err := t.client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return t.client.Text()
}

// Close implements the OCREngine interface.
func (t *tesseractEngine) Close() error {
	return t.client.Close()
}

// renderPages renders up to maxPages pages to PNG via MuPDF. A page that
// fails to render yields a nil entry so OCR can skip it.
func renderPages(path string, dpi, maxPages int) ([][]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	total := min(doc.NumPage(), maxPages)
	pages := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		png, err := doc.ImagePNG(i, float64(dpi))
		if err != nil {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, png)
	}
	return pages, nil
}
