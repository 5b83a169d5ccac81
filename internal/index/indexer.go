// Package index walks archive bundles, extracts and chunks their
// documents, and feeds both search indices. Ingest assumes a single
// writer per index directory; a file lock enforces it across processes.
package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/docarc/docarc/internal/archive"
	"github.com/docarc/docarc/internal/chunk"
	"github.com/docarc/docarc/internal/config"
	"github.com/docarc/docarc/internal/docc"
	"github.com/docarc/docarc/internal/embed"
	"github.com/docarc/docarc/internal/errors"
	"github.com/docarc/docarc/internal/store"
)

// LockFileName is the single-writer lock file under the index directory.
const LockFileName = "index.lock"

// Options selects what an ingest run covers.
type Options struct {
	// Rebuild discards the existing indices instead of appending.
	Rebuild bool
	// Archives restricts the run to the named archives; empty means all.
	Archives []string
}

// Stats summarizes one ingest run.
type Stats struct {
	Archives      int
	Documents     int
	Malformed     int
	LexicalChunks int
	VectorChunks  int
	Duration      time.Duration
}

// Indexer coordinates the ingest pipeline. A nil embedder disables the
// vector index and leaves lexical-only search.
type Indexer struct {
	locator    *archive.Locator
	embedder   embed.Embedder
	lexical    *store.LexicalIndex
	vector     *store.VectorIndex
	lexChunker *chunk.Chunker
	vecChunker *chunk.Chunker

	indexDir  string
	workers   int
	batchSize int
	logger    *slog.Logger
}

// New creates an indexer from the effective configuration.
func New(locator *archive.Locator, embedder embed.Embedder, cfg *config.Config, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Index.Workers
	if workers < 1 {
		workers = 1
	}
	return &Indexer{
		locator:    locator,
		embedder:   embedder,
		lexical:    store.NewLexicalIndex(logger),
		vector:     store.NewVectorIndex(logger),
		lexChunker: chunk.New(cfg.Index.LexicalChunkTokens, cfg.Index.LexicalChunkOverlap),
		vecChunker: chunk.New(cfg.Index.VectorChunkTokens, cfg.Index.VectorChunkOverlap),
		indexDir:   cfg.Index.Path,
		workers:    workers,
		batchSize:  cfg.Embeddings.BatchSize,
		logger:     logger,
	}
}

// Run executes one ingest pass and persists both indices.
func (x *Indexer) Run(ctx context.Context, opts Options) (*Stats, error) {
	start := time.Now()

	if err := os.MkdirAll(x.indexDir, 0o755); err != nil {
		return nil, errors.IOError("cannot create index directory", err)
	}

	lock := flock.New(filepath.Join(x.indexDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.IOError("cannot acquire index lock", err)
	}
	if !locked {
		return nil, errors.New(errors.ErrCodeIndexLocked,
			"another process is writing this index", nil).
			WithDetail("path", x.indexDir).
			WithSuggestion("wait for the running index command to finish")
	}
	defer func() { _ = lock.Unlock() }()

	if x.embedder != nil {
		if err := x.embedder.Load(ctx); err != nil {
			return nil, err
		}
	}

	if !opts.Rebuild {
		if err := x.checkModelCompatible(); err != nil {
			return nil, err
		}
		if err := x.lexical.Load(x.indexDir); err != nil {
			return nil, err
		}
		if err := x.vector.Load(x.indexDir); err != nil {
			return nil, err
		}
	}

	records, err := x.selectArchives(ctx, opts.Archives)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Archives: len(records)}
	for _, rec := range records {
		if err := x.ingestArchive(ctx, rec, stats); err != nil {
			return nil, err
		}
	}

	if err := x.save(); err != nil {
		return nil, err
	}

	stats.LexicalChunks = x.lexical.Count()
	stats.VectorChunks = x.vector.Count()
	stats.Duration = time.Since(start)
	x.logger.Info("index_complete",
		slog.Int("archives", stats.Archives),
		slog.Int("documents", stats.Documents),
		slog.Int("malformed", stats.Malformed),
		slog.Int("lexical_chunks", stats.LexicalChunks),
		slog.Int("vector_chunks", stats.VectorChunks),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// Lexical returns the lexical index built or loaded by this indexer.
func (x *Indexer) Lexical() *store.LexicalIndex { return x.lexical }

// Vector returns the vector index built or loaded by this indexer.
func (x *Indexer) Vector() *store.VectorIndex { return x.vector }

// checkModelCompatible refuses to append vectors from a different model
// onto an existing index.
func (x *Indexer) checkModelCompatible() error {
	if x.embedder == nil {
		return nil
	}
	meta, err := store.LoadMeta(x.indexDir)
	if err != nil || meta == nil {
		return err
	}
	return meta.CheckCompatible(x.embedder.ModelName(), x.embedder.Dimensions())
}

// selectArchives resolves the archive set for this run.
func (x *Indexer) selectArchives(ctx context.Context, names []string) ([]*archive.Record, error) {
	if len(names) == 0 {
		return x.locator.List(ctx)
	}
	records := make([]*archive.Record, 0, len(names))
	for _, name := range names {
		rec, err := x.locator.Find(ctx, name)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ingestArchive chunks every document of one archive and registers the
// results. Document parsing and extraction fan out over a bounded
// worker pool; the indices serialize writes internally.
func (x *Indexer) ingestArchive(ctx context.Context, rec *archive.Record, stats *Stats) error {
	paths, err := documentPaths(rec)
	if err != nil {
		x.logger.Warn("archive_data_unreadable",
			slog.String("archive", rec.Name),
			slog.String("error", err.Error()))
		return nil
	}

	var (
		documents atomic.Int64
		malformed atomic.Int64

		mu           sync.Mutex
		vectorChunks []*chunk.ContentChunk
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workers)
	for _, path := range paths {
		g.Go(func() error {
			doc, err := loadDocument(path)
			if err != nil {
				malformed.Add(1)
				x.logger.Warn("document_malformed",
					slog.String("archive", rec.Name),
					slog.String("path", path),
					slog.String("error", err.Error()))
				return nil
			}

			lex, vec := x.chunkDocument(rec, path, doc)
			if err := x.lexical.Add(gctx, lex); err != nil {
				return err
			}
			if x.embedder != nil && len(vec) > 0 {
				mu.Lock()
				vectorChunks = append(vectorChunks, vec...)
				mu.Unlock()
			}
			documents.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := x.embedAndStore(ctx, vectorChunks); err != nil {
		return err
	}

	stats.Documents += int(documents.Load())
	stats.Malformed += int(malformed.Load())
	return nil
}

// chunkDocument extracts a document's text once and windows it for each
// engine. Abstract, discussion, and parameter notes carry their own
// minimum-length floors.
func (x *Indexer) chunkDocument(rec *archive.Record, path string, doc *docc.Document) (lex, vec []*chunk.ContentChunk) {
	kind := doc.Kind
	if kind == "" && doc.IsArticle() {
		kind = docc.KindArticle
	}
	prov := chunk.Provenance{
		Archive:    rec.Name,
		DocumentID: documentID(rec, path),
		Title:      doc.Title(),
		Kind:       kind,
		URL:        doc.Identifier.URL,
	}

	parts := []struct {
		category chunk.Category
		text     string
	}{
		{chunk.CategoryAbstract, doc.AbstractText()},
		{chunk.CategoryDiscussion, doc.DiscussionText()},
	}
	for _, note := range doc.ParameterNotes() {
		parts = append(parts, struct {
			category chunk.Category
			text     string
		}{chunk.CategoryParameter, note})
	}

	for _, p := range parts {
		if strings.TrimSpace(p.text) == "" {
			continue
		}
		lex = append(lex, x.lexChunker.Build(prov, p.category, p.text)...)
		if x.embedder != nil {
			vec = append(vec, x.vecChunker.Build(prov, p.category, p.text)...)
		}
	}
	return lex, vec
}

// embedAndStore embeds pending chunks in batches and adds them to the
// vector index. Chunks already present are skipped before embedding so
// reindex runs never pay for vectors they already have.
func (x *Indexer) embedAndStore(ctx context.Context, chunks []*chunk.ContentChunk) error {
	if x.embedder == nil || len(chunks) == 0 {
		return nil
	}

	fresh := chunks[:0:0]
	for _, c := range chunks {
		if !x.vector.Contains(c.ID) {
			fresh = append(fresh, c)
		}
	}

	batch := x.batchSize
	if batch < 1 {
		batch = embed.DefaultBatchSize
	}
	for start := 0; start < len(fresh); start += batch {
		end := start + batch
		if end > len(fresh) {
			end = len(fresh)
		}
		texts := make([]string, end-start)
		for i, c := range fresh[start:end] {
			texts[i] = c.Content
		}
		vectors, err := x.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		if err := x.vector.Add(ctx, fresh[start:end], vectors); err != nil {
			return err
		}
	}
	return nil
}

// save persists both indices and the model metadata.
func (x *Indexer) save() error {
	if err := x.lexical.Save(x.indexDir); err != nil {
		return err
	}
	if x.embedder == nil {
		return nil
	}
	if err := x.vector.Save(x.indexDir); err != nil {
		return err
	}
	meta := store.NewMeta(x.embedder.ModelName(), x.embedder.Dimensions())
	return meta.Save(x.indexDir)
}

// documentPaths walks an archive's data directory collecting document
// files in deterministic order.
func documentPaths(rec *archive.Record) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(rec.DataDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// loadDocument reads and parses one document file.
func loadDocument(path string) (*docc.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return docc.ParseDocument(data)
}

// documentID derives a document's id from its path inside the data
// directory, matching the ids the resolver probes directly.
func documentID(rec *archive.Record, path string) string {
	rel, err := filepath.Rel(rec.DataDir(), path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), ".json")
}
