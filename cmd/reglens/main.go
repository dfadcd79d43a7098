// Command reglens ingests regulatory documents into a vector store and
// answers retrieval queries over them.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reglens/reglens/chunking"
	"github.com/reglens/reglens/embedder"
	geminiembedder "github.com/reglens/reglens/embedder/gemini"
	openaiembedder "github.com/reglens/reglens/embedder/openai"
	"github.com/reglens/reglens/ingest"
	"github.com/reglens/reglens/internal/config"
	"github.com/reglens/reglens/log"
	"github.com/reglens/reglens/retriever"
	"github.com/reglens/reglens/tool"
	"github.com/reglens/reglens/vectorstore"
	"github.com/reglens/reglens/vectorstore/inmemory"
	pgvectorstore "github.com/reglens/reglens/vectorstore/pgvector"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "reglens",
		Short:         "Hybrid retrieval over regulatory documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(
		newIngestCmd(&configPath),
		newAskCmd(&configPath),
		newPolicyCmd(&configPath),
		newCountCmd(&configPath),
	)
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// buildStore constructs the configured vector store backend.
func buildStore(ctx context.Context, cfg *config.Config) (vectorstore.VectorStore, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return inmemory.New(), nil
	case config.StorePGVector:
		return pgvectorstore.New(ctx,
			pgvectorstore.WithHost(cfg.Store.PGHost),
			pgvectorstore.WithPort(cfg.Store.PGPort),
			pgvectorstore.WithUser(cfg.Store.PGUser),
			pgvectorstore.WithPassword(cfg.Store.PGPassword),
			pgvectorstore.WithDatabase(cfg.Store.PGDatabase),
			pgvectorstore.WithTable(cfg.Store.PGTable),
			pgvectorstore.WithSSLMode(cfg.Store.PGSSLMode),
			pgvectorstore.WithIndexDimension(cfg.Embedder.Dimensions),
		)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildEmbedder constructs the configured embedding backend wrapped in
// the shared cache.
func buildEmbedder(ctx context.Context, cfg *config.Config) (*embedder.CachedEmbedder, error) {
	var inner embedder.Embedder
	switch cfg.Embedder.Provider {
	case config.ProviderGemini:
		opts := []geminiembedder.Option{
			geminiembedder.WithDimensions(cfg.Embedder.Dimensions),
		}
		if cfg.Embedder.Model != "" {
			opts = append(opts, geminiembedder.WithModel(cfg.Embedder.Model))
		}
		if cfg.Embedder.APIKey != "" {
			opts = append(opts, geminiembedder.WithAPIKey(cfg.Embedder.APIKey))
		}
		e, err := geminiembedder.New(ctx, opts...)
		if err != nil {
			return nil, err
		}
		inner = e
	case config.ProviderOpenAI:
		opts := []openaiembedder.Option{
			openaiembedder.WithDimensions(cfg.Embedder.Dimensions),
		}
		if cfg.Embedder.Model != "" {
			opts = append(opts, openaiembedder.WithModel(cfg.Embedder.Model))
		}
		if cfg.Embedder.APIKey != "" {
			opts = append(opts, openaiembedder.WithAPIKey(cfg.Embedder.APIKey))
		}
		if cfg.Embedder.BaseURL != "" {
			opts = append(opts, openaiembedder.WithBaseURL(cfg.Embedder.BaseURL))
		}
		inner = openaiembedder.New(opts...)
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", cfg.Embedder.Provider)
	}
	return embedder.NewCachedEmbedder(inner, embedder.NewCache()), nil
}

func newIngestCmd(configPath *string) *cobra.Command {
	var (
		replace bool
		pattern string
	)
	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest a file or directory into the vector store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := buildStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			emb, err := buildEmbedder(ctx, cfg)
			if err != nil {
				return err
			}

			ingestor := ingest.New(store, emb,
				ingest.WithChunking(chunking.NewFixedSizeChunking(
					chunking.WithChunkSize(cfg.Chunking.Size),
					chunking.WithOverlap(cfg.Chunking.Overlap),
				)),
				ingest.WithWorkers(cfg.Ingest.Workers),
			)

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			var count int
			if info.IsDir() {
				if pattern == "" {
					pattern = cfg.Ingest.Pattern
				}
				count, err = ingestor.IngestDir(ctx, path, pattern, replace)
			} else {
				count, err = ingestor.IngestFile(ctx, path, replace)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d chunks\n", count)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", true, "delete previous chunks of the same file version first")
	cmd.Flags().StringVar(&pattern, "pattern", "", "glob pattern for directory ingestion")
	return cmd
}

func newAskCmd(configPath *string) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Retrieve the chunks most relevant to a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := buildStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			emb, err := buildEmbedder(ctx, cfg)
			if err != nil {
				return err
			}

			if topK <= 0 {
				topK = cfg.Retrieve.TopK
			}
			r := retriever.New(store, emb)
			results, err := r.Retrieve(ctx, args[0], topK)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "no results")
				return nil
			}
			for i, res := range results {
				fmt.Fprintf(out, "%d. [%.4f] %s\n", i+1, res.Score, res.ID)
				fmt.Fprintf(out, "   %s\n", res.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of results to return")
	return cmd
}

func newPolicyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-policy <rule>",
		Short: "Keyword lookup over the ingested CSV policy data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			checker := tool.NewPolicyChecker(filepath.Join(cfg.DataDir, "csv"))
			matches, err := checker.Check(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(out, "no matches")
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(out, "%s\t%s\n", m.ID, m.Title)
			}
			return nil
		},
	}
}

func newCountCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count the chunks in the vector store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := buildStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Count(ctx, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
