// Package config loads runtime configuration from a config file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// REGLENS_EMBEDDER_PROVIDER.
const envPrefix = "REGLENS"

// Store backends.
const (
	StoreMemory   = "memory"
	StorePGVector = "pgvector"
)

// Embedder providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config is the runtime configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`

	Store    Store    `mapstructure:"store"`
	Embedder Embedder `mapstructure:"embedder"`
	Chunking Chunking `mapstructure:"chunking"`
	OCR      OCR      `mapstructure:"ocr"`
	Ingest   Ingest   `mapstructure:"ingest"`
	Retrieve Retrieve `mapstructure:"retrieve"`
}

// Store configures the vector store backend.
type Store struct {
	Backend string `mapstructure:"backend"`

	PGHost     string `mapstructure:"pg_host"`
	PGPort     int    `mapstructure:"pg_port"`
	PGUser     string `mapstructure:"pg_user"`
	PGPassword string `mapstructure:"pg_password"`
	PGDatabase string `mapstructure:"pg_database"`
	PGTable    string `mapstructure:"pg_table"`
	PGSSLMode  string `mapstructure:"pg_ssl_mode"`
}

// Embedder configures the embedding backend.
type Embedder struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
}

// Chunking configures text chunking.
type Chunking struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

// OCR configures the PDF OCR fallback.
type OCR struct {
	DPI      int    `mapstructure:"dpi"`
	Language string `mapstructure:"language"`
}

// Ingest configures ingestion.
type Ingest struct {
	Workers int    `mapstructure:"workers"`
	Pattern string `mapstructure:"pattern"`
}

// Retrieve configures retrieval.
type Retrieve struct {
	TopK int `mapstructure:"top_k"`
}

// Load reads configuration from the optional config file (reglens.yaml
// in the working directory or path when given) and REGLENS_* environment
// variables, applying defaults for anything unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("reglens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config file is fine.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")
	v.SetDefault("log_level", "info")

	v.SetDefault("store.backend", StoreMemory)
	v.SetDefault("store.pg_host", "localhost")
	v.SetDefault("store.pg_port", 5432)
	v.SetDefault("store.pg_database", "reglens")
	v.SetDefault("store.pg_table", "chunks")
	v.SetDefault("store.pg_ssl_mode", "disable")

	v.SetDefault("embedder.provider", ProviderOpenAI)
	v.SetDefault("embedder.model", "")
	v.SetDefault("embedder.dimensions", 1536)

	v.SetDefault("chunking.size", 1000)
	v.SetDefault("chunking.overlap", 150)

	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.language", "eng")

	v.SetDefault("ingest.workers", 4)
	v.SetDefault("ingest.pattern", "**/*")

	v.SetDefault("retrieve.top_k", 5)
}
