package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docarc/docarc/internal/archive"
	"github.com/docarc/docarc/internal/embed"
	"github.com/docarc/docarc/internal/index"
	"github.com/docarc/docarc/internal/output"
)

func newIndexCmd() *cobra.Command {
	var (
		rebuild  bool
		offline  bool
		archives []string
	)

	cmd := &cobra.Command{
		Use:   "index [archive...]",
		Short: "Build or update the search indices",
		Long: `Scan the configured archive roots, extract documents, and build the
keyword and embedding indices.

Without arguments every discovered archive is indexed. Naming archives
restricts the run to those archives. Reindexing is idempotent: chunks
already present keep their identity and are not duplicated.

Use --rebuild to discard the existing indices first, which is required
after switching embedding models. Use --offline to index with static
hash embeddings instead of a model server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIndex(ctx, cmd, rebuild, offline, append(archives, args...))
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Discard existing indices and reindex from scratch")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use static embeddings (no model server required)")
	cmd.Flags().StringSliceVar(&archives, "archive", nil, "Restrict the run to the named archive (repeatable)")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, rebuild, offline bool, archives []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if offline {
		cfg.Embeddings.Provider = "static"
	}

	_, cleanup := setupLogging(cfg, false)
	defer cleanup()
	out := output.New(cmd.OutOrStdout())

	caches, err := archive.NewCaches(cfg.Cache.ArchiveEntries, cfg.Cache.DocumentEntries)
	if err != nil {
		return err
	}
	locator := archive.NewLocator(cfg.Archives.Roots, caches, nil)

	embedder, err := embed.NewFromConfig(cfg.Embeddings)
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	out.Statusf("⚡", "Indexing archives into %s", cfg.Index.Path)

	indexer := index.New(locator, embedder, cfg, nil)
	stats, err := indexer.Run(ctx, index.Options{Rebuild: rebuild, Archives: archives})
	if err != nil {
		out.Errorf("Indexing failed: %v", err)
		return err
	}

	if stats.Malformed > 0 {
		out.Warningf("Skipped %d malformed document(s)", stats.Malformed)
	}
	out.Successf("Indexed %d archive(s), %d document(s) in %s",
		stats.Archives, stats.Documents, stats.Duration.Round(time.Millisecond))
	out.Statusf("", "keyword chunks: %d, embedding chunks: %d",
		stats.LexicalChunks, stats.VectorChunks)
	return nil
}
