package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docarc/docarc/internal/config"
	"github.com/docarc/docarc/internal/embed"
	"github.com/docarc/docarc/internal/output"
	"github.com/docarc/docarc/internal/search"
	"github.com/docarc/docarc/internal/store"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit   int
	archive string
	kind    string
	mode    string
	format  string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed documentation",
		Long: `Search the persisted indices without starting the MCP server.

Mode auto uses semantic ranking when an embedding model is available and
falls back to keyword ranking otherwise.

Examples:
  docarc search "state management"
  docarc search "View.body" --archive SwiftUI --limit 5
  docarc search "drawing paths" --kind article --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchCmd(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config)")
	cmd.Flags().StringVarP(&opts.archive, "archive", "a", "", "Restrict results to one archive")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "Restrict results by kind: symbol or article")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Ranking mode: auto, lexical, or semantic")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearchCmd(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup := setupLogging(cfg, false)
	defer cleanup()
	out := output.New(cmd.OutOrStdout())

	lexical := store.NewLexicalIndex(logger)
	vector := store.NewVectorIndex(logger)
	if err := lexical.Load(cfg.Index.Path); err != nil {
		return err
	}
	if err := vector.Load(cfg.Index.Path); err != nil {
		return err
	}
	if lexical.Count() == 0 && vector.Count() == 0 {
		return fmt.Errorf("no index found at %s. Run 'docarc index' first", cfg.Index.Path)
	}

	mode := search.Mode(opts.mode)
	if opts.mode == "" {
		mode = search.Mode(cfg.Search.Mode)
	}
	limit := opts.limit
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}

	embedder, err := searchEmbedder(ctx, cfg, mode, vector, logger)
	if err != nil {
		return err
	}
	if embedder != nil {
		defer func() { _ = embedder.Close() }()
	}

	engine := search.NewEngine(lexical, vector, embedder, logger)
	results, err := engine.Search(ctx, query, search.Options{
		Limit:   limit,
		Archive: opts.archive,
		Kind:    opts.kind,
		Mode:    mode,
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		out.Status("", "No results.")
		return nil
	}
	for i, r := range results {
		out.Statusf("", "%2d. %s  [%s/%s]  %.3f", i+1, r.Title, r.Archive, r.Kind, r.Score)
		if r.Excerpt != "" {
			out.Statusf("", "    %s", r.Excerpt)
		}
		if r.URL != "" {
			out.Statusf("", "    %s", r.URL)
		}
	}
	return nil
}

// searchEmbedder loads the embedding provider when the requested mode can
// use it. Semantic mode fails when the model cannot load; auto mode falls
// back to keyword ranking.
func searchEmbedder(ctx context.Context, cfg *config.Config, mode search.Mode, vector *store.VectorIndex, logger *slog.Logger) (embed.Embedder, error) {
	if mode == search.ModeLexical || vector.Count() == 0 {
		return nil, nil
	}

	embedder, err := embed.NewFromConfig(cfg.Embeddings)
	if err == nil {
		err = embedder.Load(ctx)
	}
	if err != nil {
		if mode == search.ModeSemantic {
			return nil, err
		}
		logger.Warn("embedder_unavailable", slog.String("error", err.Error()))
		return nil, nil
	}
	return embedder, nil
}
