package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docarc/docarc/internal/archive"
	"github.com/docarc/docarc/internal/config"
	"github.com/docarc/docarc/internal/embed"
	mcpserver "github.com/docarc/docarc/internal/mcp"
	"github.com/docarc/docarc/internal/search"
	"github.com/docarc/docarc/internal/store"
	"github.com/docarc/docarc/internal/watcher"
)

func newServeCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run the MCP server, exposing the indexed archives to MCP clients.

Stdout carries JSON-RPC exclusively; all logging goes to the log file.
Missing index files are not an error: the server degrades to lookup and
browse until 'docarc index' has run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Reload indices when another process rewrites them")

	return cmd
}

func runServe(ctx context.Context, watch bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup := setupLogging(cfg, false)
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	caches, err := archive.NewCaches(cfg.Cache.ArchiveEntries, cfg.Cache.DocumentEntries)
	if err != nil {
		return err
	}
	locator := archive.NewLocator(cfg.Archives.Roots, caches, logger)
	resolver := archive.NewResolver(locator, caches, logger)

	lexical := store.NewLexicalIndex(logger)
	vector := store.NewVectorIndex(logger)
	if err := lexical.Load(cfg.Index.Path); err != nil {
		return err
	}
	if err := vector.Load(cfg.Index.Path); err != nil {
		return err
	}

	embedder := loadServeEmbedder(ctx, cfg, logger)
	if embedder != nil {
		defer func() { _ = embedder.Close() }()
	}

	engine := search.NewEngine(lexical, vector, embedder, logger)

	if watch || cfg.Server.Watch {
		w, werr := watcher.New(cfg.Index.Path, lexical, vector, logger)
		if werr != nil {
			logger.Warn("index_watch_unavailable", slog.String("error", werr.Error()))
		} else {
			go w.Start(ctx)
			defer func() { _ = w.Close() }()
		}
	}

	srv, err := mcpserver.NewServer(engine, locator, resolver, cfg, logger)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, cfg.Server.Transport)
}

// loadServeEmbedder builds and loads the configured embedding provider.
// Any failure degrades the server to lexical-only search rather than
// refusing to start; a model that conflicts with the persisted index is
// treated the same way.
func loadServeEmbedder(ctx context.Context, cfg *config.Config, logger *slog.Logger) embed.Embedder {
	embedder, err := embed.NewFromConfig(cfg.Embeddings)
	if err != nil {
		logger.Warn("embedder_config_invalid", slog.String("error", err.Error()))
		return nil
	}
	if err := embedder.Load(ctx); err != nil {
		logger.Warn("embedder_unavailable",
			slog.String("provider", cfg.Embeddings.Provider),
			slog.String("error", err.Error()))
		_ = embedder.Close()
		return nil
	}

	meta, err := store.LoadMeta(cfg.Index.Path)
	if err == nil && meta != nil {
		if cerr := meta.CheckCompatible(embedder.ModelName(), embedder.Dimensions()); cerr != nil {
			logger.Warn("index_model_mismatch", slog.String("error", cerr.Error()))
			_ = embedder.Close()
			return nil
		}
	}
	return embedder
}
