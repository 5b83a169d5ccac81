package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docarc/docarc/internal/archive"
	"github.com/docarc/docarc/internal/config"
	derrors "github.com/docarc/docarc/internal/errors"
	"github.com/docarc/docarc/internal/search"
	"github.com/docarc/docarc/pkg/version"
)

// Server bridges MCP clients to archive search and lookup.
type Server struct {
	mcp      *mcp.Server
	engine   *search.Engine
	locator  *archive.Locator
	resolver *archive.Resolver
	config   *config.Config
	logger   *slog.Logger
}

// NewServer wires the MCP server and registers its tools.
func NewServer(engine *search.Engine, locator *archive.Locator, resolver *archive.Resolver, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, derrors.InternalError("search engine is required", nil)
	}
	if locator == nil || resolver == nil {
		return nil, derrors.InternalError("archive locator and resolver are required", nil)
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine:   engine,
		locator:  locator,
		resolver: resolver,
		config:   cfg,
		logger:   logger,
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: "docarc", Version: version.Version},
		nil,
	)
	s.registerTools()
	return s, nil
}

// registerTools declares every tool the server offers.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed documentation archives by relevance. Combines TF-IDF keyword ranking with semantic embedding search. Returns excerpts with provenance so results can be followed up with get_symbol or get_article.",
	}, s.searchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_symbol",
		Description: "Fetch the full documentation of one API symbol from an archive, including abstract and discussion. Accepts a symbol name or a documentation path.",
	}, s.getSymbolHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_article",
		Description: "Fetch a narrative article or tutorial from an archive by name or path.",
	}, s.getArticleHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_archives",
		Description: "List every documentation archive discovered across the configured search roots, with document counts.",
	}, s.listArchivesHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "browse_archive",
		Description: "Browse the directory structure inside an archive, one level at a time. Useful for discovering documentation paths before fetching.",
	}, s.browseArchiveHandler)

	s.logger.Info("mcp_tools_registered", slog.Int("count", 5))
}

// Serve runs the server over the configured transport. Stdout belongs
// to JSON-RPC; all logging goes to the log file.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("mcp_server_starting",
		slog.String("transport", transport),
		slog.String("version", version.Version))

	switch transport {
	case "", "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.logger.Error("mcp_server_stopped",
				slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp_server_stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}
