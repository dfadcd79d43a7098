// Package plaintext provides a plain-text document extractor.
package plaintext

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/reglens/reglens/document"
	"github.com/reglens/reglens/extractor"
)

func init() {
	extractor.Register([]string{".txt", ".text", ".log"}, func() extractor.Extractor {
		return New()
	})
}

// decoders is the ordered fallback chain tried when the raw bytes are not
// valid UTF-8. First success wins.
var decoders = []*charmap.Charmap{
	charmap.Windows1252,
	charmap.ISO8859_1,
}

// Extractor reads plain-text files with an encoding fallback chain so that
// no file causes extraction to fail outright.
type Extractor struct{}

// New creates a new plain-text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract implements the extractor.Extractor interface.
func (e *Extractor) Extract(path string) (*extractor.Extraction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &extractor.Extraction{
		Text: decode(raw),
		Metadata: map[string]any{
			document.MetaSourceType: document.SourceTypeTxt,
		},
	}, nil
}

// Name returns the name of this extractor.
func (e *Extractor) Name() string {
	return "PlainTextExtractor"
}

// decode returns raw as a UTF-8 string, trying the permissive single-byte
// fallbacks before resorting to replacement of invalid sequences.
func decode(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	for _, cm := range decoders {
		if out, err := tryDecode(cm.NewDecoder(), raw); err == nil {
			return out
		}
	}
	return strings.ToValidUTF8(string(raw), "")
}

func tryDecode(dec *encoding.Decoder, raw []byte) (string, error) {
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
