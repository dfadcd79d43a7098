package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractRows_BodyFieldsAndMetadata(t *testing.T) {
	path := writeCSV(t, `record_id,title,body,jurisdiction,risk_level
R-1,KYC Policy,Customers must be verified.,Singapore,high
R-2,Data Rules,Personal data stays onshore.,EU,medium
`)

	rows, err := New().ExtractRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	require.Equal(t, "R-1", first.Key)
	require.Equal(t, 1, first.Index)
	require.Equal(t, "title: KYC Policy\nbody: Customers must be verified.", first.Text)
	require.Equal(t, "Singapore", first.Metadata["jurisdiction"])
	require.Equal(t, "high", first.Metadata["risk_level"])

	require.Equal(t, "R-2", rows[1].Key)
	require.Equal(t, 2, rows[1].Index)
}

func TestExtractRows_RowKeyFallback(t *testing.T) {
	path := writeCSV(t, `title,body
No Key Here,some text
`)

	rows, err := New().ExtractRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "row-1", rows[0].Key)
}

func TestExtractRows_SummaryColumn(t *testing.T) {
	path := writeCSV(t, `id,summary
7,A short demo summary.
`)

	rows, err := New().ExtractRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "7", rows[0].Key)
	require.Equal(t, "summary: A short demo summary.", rows[0].Text)
}

func TestExtractRows_FallbackConcatenation(t *testing.T) {
	// No prioritized body columns: values concatenate in column order.
	path := writeCSV(t, `alpha,beta,gamma
one,,three
`)

	rows, err := New().ExtractRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "one three", rows[0].Text)
}

func TestExtractRows_SkipsEmptyRows(t *testing.T) {
	path := writeCSV(t, `title,body
Has Text,body here
,
`)

	rows, err := New().ExtractRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExtractRows_SemicolonDelimiter(t *testing.T) {
	path := writeCSV(t, `title;body;jurisdiction
Rules;Semicolon separated text;DE
`)

	rows, err := New().ExtractRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "title: Rules\nbody: Semicolon separated text", rows[0].Text)
	require.Equal(t, "DE", rows[0].Metadata["jurisdiction"])
}

func TestExtractRows_HeaderCaseInsensitive(t *testing.T) {
	path := writeCSV(t, `Title,BODY
Mixed Case,works fine
`)

	rows, err := New().ExtractRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "title: Mixed Case\nbody: works fine", rows[0].Text)
}

func TestExtractRows_MissingFile(t *testing.T) {
	_, err := New().ExtractRows(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
