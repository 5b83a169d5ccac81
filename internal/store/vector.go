package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/docarc/docarc/internal/chunk"
	"github.com/docarc/docarc/internal/errors"
)

// VectorIndex ranks chunks by cosine similarity over stored embeddings.
// Search is a linear scan; at the tens-of-thousands-of-chunks scale an
// archive set produces, that beats maintaining a graph structure. Not
// meant for corpora beyond that.
type VectorIndex struct {
	mu      sync.RWMutex
	records []*IndexRecord
	ids     map[string]struct{}
	closed  bool
	logger  *slog.Logger

	updatedAt time.Time
}

// NewVectorIndex creates an empty vector index.
func NewVectorIndex(logger *slog.Logger) *VectorIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &VectorIndex{ids: make(map[string]struct{}), logger: logger}
}

// Add stores chunks with their embeddings. The two slices are parallel;
// chunks whose id is already present are skipped.
func (x *VectorIndex) Add(ctx context.Context, chunks []*chunk.ContentChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return errors.InternalError("chunk and embedding counts differ", nil).
			WithDetail("chunks", strconv.Itoa(len(chunks))).
			WithDetail("embeddings", strconv.Itoa(len(embeddings)))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return errors.InternalError("vector index is closed", nil)
	}

	for i, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, dup := x.ids[c.ID]; dup {
			continue
		}
		rec := NewRecord(c)
		rec.Embedding = embeddings[i]
		x.records = append(x.records, rec)
		x.ids[c.ID] = struct{}{}
	}
	x.updatedAt = time.Now()
	return nil
}

// Search scans every stored vector, scores it against the query
// embedding, and returns the top limit hits sorted by descending
// similarity. The archive filter runs after global ranking, matching
// the lexical index.
func (x *VectorIndex) Search(ctx context.Context, query []float32, limit int, archive string) ([]*Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, errors.InternalError("vector index is closed", nil)
	}

	hits := make([]*Hit, 0, len(x.records))
	for _, rec := range x.records {
		hits = append(hits, &Hit{Record: rec, Score: Cosine(query, rec.Embedding)})
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

// Contains reports whether a chunk id is already indexed.
func (x *VectorIndex) Contains(id string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.ids[id]
	return ok
}

// Count returns the number of stored vectors.
func (x *VectorIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// Dimensions returns the embedding width, or 0 when empty.
func (x *VectorIndex) Dimensions() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.records) == 0 {
		return 0
	}
	return len(x.records[0].Embedding)
}

// Stats reports store size.
func (x *VectorIndex) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return Stats{DocumentCount: len(x.records), UpdatedAt: x.updatedAt}
}

// Save writes the full record list, embeddings inline, as one file.
func (x *VectorIndex) Save(dir string) error {
	x.mu.RLock()
	records := x.records
	x.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot create index directory", err)
	}
	if records == nil {
		records = []*IndexRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot encode vector index", err)
	}
	path := filepath.Join(dir, VectorFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot write vector index", err).
			WithDetail("path", path)
	}
	return nil
}

// Load reads the record list from dir. Missing or corrupt files leave
// the index empty, never fail.
func (x *VectorIndex) Load(dir string) error {
	path := filepath.Join(dir, VectorFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			x.logger.Warn("vector_index_unreadable",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return nil
	}

	var records []*IndexRecord
	if err := json.Unmarshal(data, &records); err != nil {
		x.logger.Warn("vector_index_corrupt",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.records = nil
	x.ids = make(map[string]struct{})
	for _, rec := range records {
		if rec == nil || rec.ID == "" {
			continue
		}
		if _, dup := x.ids[rec.ID]; dup {
			continue
		}
		x.records = append(x.records, rec)
		x.ids[rec.ID] = struct{}{}
	}
	return nil
}

// Close marks the index unusable for further mutation.
func (x *VectorIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.closed = true
	return nil
}

// Cosine computes dot(a,b) / (|a|·|b|). A zero vector on either side
// scores 0 rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
