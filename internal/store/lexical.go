package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/docarc/docarc/internal/chunk"
	"github.com/docarc/docarc/internal/errors"
)

// LexicalIndex ranks chunks by TF-IDF term relevance. The corpus is
// append-only; records are deduplicated by their content-addressed id,
// so reindexing the same documents is a no-op.
//
// Term-frequency structures are derived state: they are rebuilt from
// the raw document list on load and never persisted.
type LexicalIndex struct {
	mu     sync.RWMutex
	docs   []*IndexRecord
	ids    map[string]struct{}
	closed bool
	logger *slog.Logger

	// Derived from docs; rebuilt on load, extended on add.
	termFreq []map[string]int
	docLen   []int
	docFreq  map[string]int

	updatedAt time.Time
}

// lexicalFile is the persisted layout of the lexical index.
type lexicalFile struct {
	Documents []*IndexRecord `json:"documents"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
}

// NewLexicalIndex creates an empty lexical index.
func NewLexicalIndex(logger *slog.Logger) *LexicalIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &LexicalIndex{
		ids:     make(map[string]struct{}),
		docFreq: make(map[string]int),
		logger:  logger,
	}
}

// Add registers chunks in the corpus. Chunks whose id is already
// present are skipped; the caller does not need to track what has been
// indexed before.
func (x *LexicalIndex) Add(ctx context.Context, chunks []*chunk.ContentChunk) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return errors.InternalError("lexical index is closed", nil)
	}

	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, dup := x.ids[c.ID]; dup {
			continue
		}
		x.appendLocked(NewRecord(c))
	}
	x.updatedAt = time.Now()
	return nil
}

// appendLocked adds one record and extends the derived term structures.
func (x *LexicalIndex) appendLocked(rec *IndexRecord) {
	terms := chunk.Tokens(rec.Content)
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	for t := range tf {
		x.docFreq[t]++
	}

	x.docs = append(x.docs, rec)
	x.ids[rec.ID] = struct{}{}
	x.termFreq = append(x.termFreq, tf)
	x.docLen = append(x.docLen, len(terms))
}

// Search ranks the whole corpus against the query and returns the top
// limit hits with strictly positive scores. The archive filter is
// applied after global ranking, so the limit reflects global rank, not
// per-archive rank.
func (x *LexicalIndex) Search(ctx context.Context, query string, limit int, archive string) ([]*Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := chunk.Tokens(query)
	if len(terms) == 0 {
		return nil, errors.New(errors.ErrCodeQueryEmpty, "query contains no searchable terms", nil)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, errors.InternalError("lexical index is closed", nil)
	}

	n := len(x.docs)
	var hits []*Hit
	for i, rec := range x.docs {
		score := x.scoreLocked(i, n, terms)
		if score > 0 {
			hits = append(hits, &Hit{Record: rec, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	if archive != "" {
		hits = filterArchive(hits, archive)
	}
	return hits, nil
}

// scoreLocked computes the TF-IDF relevance of document i for the
// normalized query terms.
func (x *LexicalIndex) scoreLocked(i, n int, terms []string) float64 {
	if x.docLen[i] == 0 {
		return 0
	}
	var score float64
	for _, t := range terms {
		tf := x.termFreq[i][t]
		if tf == 0 {
			continue
		}
		idf := math.Log(1 + float64(n)/float64(x.docFreq[t]))
		score += float64(tf) / float64(x.docLen[i]) * idf
	}
	return score
}

// Count returns the corpus size.
func (x *LexicalIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// Stats reports corpus and vocabulary size.
func (x *LexicalIndex) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return Stats{
		DocumentCount: len(x.docs),
		TermCount:     len(x.docFreq),
		UpdatedAt:     x.updatedAt,
	}
}

// Save writes the corpus to dir as a single file, wholesale. Derived
// term structures are not written.
func (x *LexicalIndex) Save(dir string) error {
	x.mu.RLock()
	payload := lexicalFile{
		Documents: x.docs,
		Timestamp: time.Now(),
		Version:   FormatVersion,
	}
	x.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot create index directory", err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot encode lexical index", err)
	}
	path := filepath.Join(dir, LexicalFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot write lexical index", err).
			WithDetail("path", path)
	}
	return nil
}

// Load reads the corpus from dir and rebuilds the term structures. A
// missing or corrupt file means an empty index, never an error; first
// runs bootstrap this way.
func (x *LexicalIndex) Load(dir string) error {
	path := filepath.Join(dir, LexicalFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			x.logger.Warn("lexical_index_unreadable",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return nil
	}

	var payload lexicalFile
	if err := json.Unmarshal(data, &payload); err != nil {
		x.logger.Warn("lexical_index_corrupt",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.docs = nil
	x.ids = make(map[string]struct{})
	x.termFreq = nil
	x.docLen = nil
	x.docFreq = make(map[string]int)
	for _, rec := range payload.Documents {
		if rec == nil || rec.ID == "" {
			continue
		}
		if _, dup := x.ids[rec.ID]; dup {
			continue
		}
		x.appendLocked(rec)
	}
	x.updatedAt = payload.Timestamp
	return nil
}

// Close marks the index unusable for further mutation.
func (x *LexicalIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.closed = true
	return nil
}

// filterArchive keeps hits from one archive, preserving relative order.
func filterArchive(hits []*Hit, archive string) []*Hit {
	filtered := hits[:0:0]
	for _, h := range hits {
		if h.Record.Metadata.Archive == archive {
			filtered = append(filtered, h)
		}
	}
	return filtered
}
