package plaintext

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/reglens/reglens/document"
)

func TestExtract_UTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain UTF-8 text with ümlauts"), 0o644))

	got, err := New().Extract(path)
	require.NoError(t, err)
	require.Equal(t, "plain UTF-8 text with ümlauts", got.Text)
	require.Equal(t, document.SourceTypeTxt, got.Metadata[document.MetaSourceType])
}

func TestExtract_Windows1252Fallback(t *testing.T) {
	// 0xE9 is é in Windows-1252 but invalid standalone UTF-8.
	path := filepath.Join(t.TempDir(), "legacy.txt")
	require.NoError(t, os.WriteFile(path, []byte{'c', 'a', 'f', 0xE9}, 0o644))

	got, err := New().Extract(path)
	require.NoError(t, err)
	require.Equal(t, "café", got.Text)
	require.True(t, utf8.ValidString(got.Text))
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestDecode_AlwaysValidUTF8(t *testing.T) {
	inputs := [][]byte{
		[]byte("ascii"),
		{0xFF, 0xFE, 0x00},
		{},
	}
	for _, in := range inputs {
		require.True(t, utf8.ValidString(decode(in)))
	}
}
