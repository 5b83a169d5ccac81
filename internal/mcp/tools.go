package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docarc/docarc/internal/archive"
	"github.com/docarc/docarc/internal/docc"
	derrors "github.com/docarc/docarc/internal/errors"
	"github.com/docarc/docarc/internal/search"
)

// SearchInput is the search tool's input schema.
type SearchInput struct {
	Query   string `json:"query" jsonschema:"the search query"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10"`
	Archive string `json:"archive,omitempty" jsonschema:"restrict results to one archive by name"`
	Kind    string `json:"kind,omitempty" jsonschema:"restrict results by document kind: symbol or article"`
	Mode    string `json:"mode,omitempty" jsonschema:"ranking mode: auto, lexical, or semantic"`
}

// SearchOutput is the search tool's output schema.
type SearchOutput struct {
	Results []search.Result `json:"results" jsonschema:"ranked search results"`
}

// DocumentOutput is the get_symbol and get_article output schema.
// Found is false when the document does not exist; that is a result,
// not an error.
type DocumentOutput struct {
	Found    bool   `json:"found" jsonschema:"whether the document was found"`
	Archive  string `json:"archive,omitempty" jsonschema:"archive the document came from"`
	Title    string `json:"title,omitempty" jsonschema:"document title"`
	Kind     string `json:"kind,omitempty" jsonschema:"document kind"`
	URL      string `json:"url,omitempty" jsonschema:"canonical documentation url"`
	Abstract string `json:"abstract,omitempty" jsonschema:"one-paragraph summary"`
	Content  string `json:"content,omitempty" jsonschema:"full extracted plain text"`
}

// SymbolInput is the get_symbol tool's input schema.
type SymbolInput struct {
	Archive string `json:"archive" jsonschema:"archive name, as returned by list_archives"`
	Symbol  string `json:"symbol" jsonschema:"symbol name or documentation path"`
}

// ArticleInput is the get_article tool's input schema.
type ArticleInput struct {
	Archive string `json:"archive" jsonschema:"archive name, as returned by list_archives"`
	Article string `json:"article" jsonschema:"article name or documentation path"`
}

// ArchiveInfo describes one discovered archive.
type ArchiveInfo struct {
	Name          string `json:"name" jsonschema:"archive name used by the other tools"`
	DisplayName   string `json:"display_name" jsonschema:"human-readable bundle name"`
	Identifier    string `json:"identifier,omitempty" jsonschema:"reverse-DNS bundle identifier"`
	DocumentCount int    `json:"document_count" jsonschema:"number of documents in the archive"`
}

// ListArchivesInput is the list_archives tool's input schema.
type ListArchivesInput struct{}

// ListArchivesOutput is the list_archives tool's output schema.
type ListArchivesOutput struct {
	Archives []ArchiveInfo `json:"archives" jsonschema:"discovered archives, sorted by name"`
}

// BrowseInput is the browse_archive tool's input schema.
type BrowseInput struct {
	Archive string `json:"archive" jsonschema:"archive name, as returned by list_archives"`
	Path    string `json:"path,omitempty" jsonschema:"directory path inside the archive; empty for the root"`
}

// BrowseOutput is the browse_archive tool's output schema.
type BrowseOutput struct {
	Found   bool            `json:"found" jsonschema:"whether the archive and path exist"`
	Archive string          `json:"archive,omitempty" jsonschema:"archive browsed"`
	Path    string          `json:"path,omitempty" jsonschema:"path browsed, relative to the archive root"`
	Entries []archive.Entry `json:"entries,omitempty" jsonschema:"directories and documents at this path"`
}

func (s *Server) searchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return nil, SearchOutput{}, NewInvalidParamsError("query parameter is required")
	}

	results, err := s.engine.Search(ctx, input.Query, search.Options{
		Limit:   input.Limit,
		Archive: input.Archive,
		Kind:    input.Kind,
		Mode:    search.Mode(input.Mode),
	})
	if err != nil {
		return nil, SearchOutput{}, MapError(err)
	}
	if results == nil {
		results = []search.Result{}
	}
	return nil, SearchOutput{Results: results}, nil
}

func (s *Server) getSymbolHandler(ctx context.Context, _ *mcp.CallToolRequest, input SymbolInput) (*mcp.CallToolResult, DocumentOutput, error) {
	if input.Archive == "" || input.Symbol == "" {
		return nil, DocumentOutput{}, NewInvalidParamsError("archive and symbol parameters are required")
	}

	doc, err := s.resolver.ResolveSymbol(ctx, input.Archive, input.Symbol)
	return s.documentResult(input.Archive, doc, err)
}

func (s *Server) getArticleHandler(ctx context.Context, _ *mcp.CallToolRequest, input ArticleInput) (*mcp.CallToolResult, DocumentOutput, error) {
	if input.Archive == "" || input.Article == "" {
		return nil, DocumentOutput{}, NewInvalidParamsError("archive and article parameters are required")
	}

	doc, err := s.resolver.ResolveArticle(ctx, input.Archive, input.Article)
	return s.documentResult(input.Archive, doc, err)
}

// documentResult folds a lookup outcome into the shared output shape:
// not-found becomes an empty result, real failures become protocol
// errors.
func (s *Server) documentResult(archiveName string, doc *docc.Document, err error) (*mcp.CallToolResult, DocumentOutput, error) {
	if err != nil {
		if derrors.IsNotFound(err) {
			return nil, DocumentOutput{Found: false}, nil
		}
		return nil, DocumentOutput{}, MapError(err)
	}
	return nil, DocumentOutput{
		Found:    true,
		Archive:  archiveName,
		Title:    doc.Title(),
		Kind:     doc.Kind,
		URL:      doc.Identifier.URL,
		Abstract: doc.AbstractText(),
		Content:  doc.ContentText(),
	}, nil
}

func (s *Server) listArchivesHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ListArchivesInput) (*mcp.CallToolResult, ListArchivesOutput, error) {
	records, err := s.locator.List(ctx)
	if err != nil {
		return nil, ListArchivesOutput{}, MapError(err)
	}

	out := ListArchivesOutput{Archives: make([]ArchiveInfo, 0, len(records))}
	for _, rec := range records {
		out.Archives = append(out.Archives, ArchiveInfo{
			Name:          rec.Name,
			DisplayName:   rec.DisplayName,
			Identifier:    rec.BundleIdentifier,
			DocumentCount: rec.DocumentCount(),
		})
	}
	return nil, out, nil
}

func (s *Server) browseArchiveHandler(ctx context.Context, _ *mcp.CallToolRequest, input BrowseInput) (*mcp.CallToolResult, BrowseOutput, error) {
	if input.Archive == "" {
		return nil, BrowseOutput{}, NewInvalidParamsError("archive parameter is required")
	}

	listing, err := s.locator.Browse(ctx, input.Archive, input.Path)
	if err != nil {
		if derrors.IsNotFound(err) {
			return nil, BrowseOutput{Found: false}, nil
		}
		s.logger.Warn("browse_failed",
			slog.String("archive", input.Archive),
			slog.String("path", input.Path),
			slog.String("error", err.Error()))
		return nil, BrowseOutput{}, MapError(err)
	}
	return nil, BrowseOutput{
		Found:   true,
		Archive: listing.Archive,
		Path:    listing.Path,
		Entries: listing.Entries,
	}, nil
}
