// Package store holds the two search indices and their persistence: a
// TF-IDF lexical index and a cosine-similarity vector index, each saved
// as a single JSON file under the index directory.
package store

import (
	"time"

	"github.com/docarc/docarc/internal/chunk"
)

// Index file names under the index directory.
const (
	LexicalFileName = "text-index.json"
	VectorFileName  = "embeddings.json"
	MetaFileName    = "index-meta.json"
)

// FormatVersion is the on-disk format version written into saved
// indices. Bump on incompatible layout changes.
const FormatVersion = "1"

// IndexRecord is one indexed chunk. The embedding is populated only in
// the vector index; the lexical index persists records without it.
type IndexRecord struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Tokens    int              `json:"tokens"`
	Metadata  chunk.Provenance `json:"metadata"`
	Embedding []float32        `json:"embedding,omitempty"`
}

// NewRecord builds a record from a content chunk.
func NewRecord(c *chunk.ContentChunk) *IndexRecord {
	return &IndexRecord{
		ID:       c.ID,
		Content:  c.Content,
		Tokens:   c.TokenEstimate(),
		Metadata: c.Provenance,
	}
}

// Hit is one ranked search result from either index.
type Hit struct {
	Record *IndexRecord
	Score  float64
}

// Stats summarizes an index for status output.
type Stats struct {
	DocumentCount int
	TermCount     int
	UpdatedAt     time.Time
}
