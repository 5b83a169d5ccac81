// Package search answers queries against the persisted indices,
// choosing between lexical and semantic ranking per request.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docarc/docarc/internal/embed"
	"github.com/docarc/docarc/internal/errors"
	"github.com/docarc/docarc/internal/store"
)

// Mode selects the ranking engine.
type Mode string

const (
	// ModeAuto uses semantic ranking when the vector index and model are
	// available and falls back to lexical otherwise.
	ModeAuto     Mode = "auto"
	ModeLexical  Mode = "lexical"
	ModeSemantic Mode = "semantic"
)

// ExcerptLength bounds the content excerpt in a result.
const ExcerptLength = 240

// DefaultLimit is the result count when the caller does not set one.
const DefaultLimit = 10

// Options narrows one search request.
type Options struct {
	Limit   int
	Archive string
	Kind    string
	Mode    Mode
}

// Result is one ranked search hit.
type Result struct {
	Title      string  `json:"title"`
	Excerpt    string  `json:"excerpt"`
	URL        string  `json:"url,omitempty"`
	Archive    string  `json:"archive"`
	Kind       string  `json:"kind,omitempty"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
}

// Engine fans queries out to the indices. The indices it holds are the
// read side; a separate process owns ingest (see the index package).
type Engine struct {
	lexical  *store.LexicalIndex
	vector   *store.VectorIndex
	embedder embed.Embedder
	logger   *slog.Logger
}

// NewEngine creates a search engine. embedder may be nil, which
// disables semantic mode.
func NewEngine(lexical *store.LexicalIndex, vector *store.VectorIndex, embedder embed.Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{lexical: lexical, vector: vector, embedder: embedder, logger: logger}
}

// Search runs one query. The kind filter is applied after ranking,
// like the indices' archive filter, so limits reflect global rank.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New(errors.ErrCodeQueryEmpty, "query must not be empty", nil)
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	mode := e.resolveMode(opts.Mode)
	var hits []*store.Hit
	var err error
	switch mode {
	case ModeSemantic:
		hits, err = e.semantic(ctx, query, opts)
	default:
		hits, err = e.lexical.Search(ctx, query, opts.Limit, opts.Archive)
	}
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if opts.Kind != "" && h.Record.Metadata.Kind != opts.Kind {
			continue
		}
		results = append(results, toResult(h))
	}
	e.logger.Debug("search_complete",
		slog.String("mode", string(mode)),
		slog.Int("results", len(results)))
	return results, nil
}

// resolveMode picks the effective engine for this request.
func (e *Engine) resolveMode(m Mode) Mode {
	switch m {
	case ModeLexical:
		return ModeLexical
	case ModeSemantic:
		return ModeSemantic
	default:
		if e.embedder != nil && e.vector.Count() > 0 {
			return ModeSemantic
		}
		return ModeLexical
	}
}

// semantic embeds the query and ranks by cosine similarity. An unloaded
// model fails fast here rather than falling back silently: the caller
// asked for semantic results and should know they are unavailable.
func (e *Engine) semantic(ctx context.Context, query string, opts Options) ([]*store.Hit, error) {
	if e.embedder == nil {
		return nil, errors.Unavailable("no embedding model is configured")
	}
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.vector.Search(ctx, vector, opts.Limit, opts.Archive)
}

// toResult converts an index hit into an API result.
func toResult(h *store.Hit) Result {
	return Result{
		Title:      h.Record.Metadata.Title,
		Excerpt:    excerpt(h.Record.Content),
		URL:        h.Record.Metadata.URL,
		Archive:    h.Record.Metadata.Archive,
		Kind:       h.Record.Metadata.Kind,
		DocumentID: h.Record.Metadata.DocumentID,
		Score:      h.Score,
	}
}

// excerpt trims content to a display length, cutting on a word
// boundary.
func excerpt(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= ExcerptLength {
		return content
	}
	cut := content[:ExcerptLength]
	if i := strings.LastIndexByte(cut, ' '); i > ExcerptLength/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
