package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "./data", cfg.DataDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, StoreMemory, cfg.Store.Backend)
	require.Equal(t, ProviderOpenAI, cfg.Embedder.Provider)
	require.Equal(t, 1536, cfg.Embedder.Dimensions)
	require.Equal(t, 1000, cfg.Chunking.Size)
	require.Equal(t, 150, cfg.Chunking.Overlap)
	require.Equal(t, 300, cfg.OCR.DPI)
	require.Equal(t, "eng", cfg.OCR.Language)
	require.Equal(t, 5, cfg.Retrieve.TopK)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("REGLENS_STORE_BACKEND", StorePGVector)
	t.Setenv("REGLENS_CHUNKING_SIZE", "500")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, StorePGVector, cfg.Store.Backend)
	require.Equal(t, 500, cfg.Chunking.Size)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reglens.yaml")
	content := `
data_dir: /srv/reglens
embedder:
  provider: gemini
  dimensions: 768
chunking:
  size: 800
  overlap: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/reglens", cfg.DataDir)
	require.Equal(t, ProviderGemini, cfg.Embedder.Provider)
	require.Equal(t, 768, cfg.Embedder.Dimensions)
	require.Equal(t, 800, cfg.Chunking.Size)
	require.Equal(t, 100, cfg.Chunking.Overlap)
	// Unset values keep defaults.
	require.Equal(t, StoreMemory, cfg.Store.Backend)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
