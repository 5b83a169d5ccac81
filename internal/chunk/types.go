// Package chunk splits extracted documentation text into bounded,
// overlapping windows and stamps each window with stable provenance.
package chunk

// Window defaults per engine. The vector engine uses a tighter window
// because embedding models have smaller input limits.
const (
	DefaultVectorMaxTokens     = 500
	DefaultVectorOverlapTokens = 50

	DefaultLexicalMaxTokens     = 1000
	DefaultLexicalOverlapTokens = 100

	// wordsPerToken converts a token budget into a word budget.
	wordsPerToken = 0.75
)

// Minimum content lengths in characters. Chunks below their category's
// floor are dropped by the caller before indexing.
const (
	MinAbstractChars  = 50
	MinParameterChars = 20
)

// Category classifies where a chunk's text came from, which decides its
// minimum-length floor.
type Category string

const (
	CategoryAbstract   Category = "abstract"
	CategoryDiscussion Category = "discussion"
	CategoryParameter  Category = "parameter"
)

// MinLength returns the character floor for the category.
func (c Category) MinLength() int {
	if c == CategoryParameter {
		return MinParameterChars
	}
	return MinAbstractChars
}

// Provenance identifies the document a chunk was extracted from.
type Provenance struct {
	Archive    string `json:"archive"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	URL        string `json:"url"`
}

// ContentChunk is the unit handed to the indices: one window of extracted
// text plus the provenance of the document it came from. Immutable once
// built.
type ContentChunk struct {
	// ID is a content-addressed identifier, stable across reindex runs.
	ID string `json:"id"`

	Provenance

	Content string `json:"content"`
	// Index is the window's position within its source document.
	Index int `json:"index"`
}

// TokenEstimate approximates the token count of the chunk's content.
func (c *ContentChunk) TokenEstimate() int {
	return EstimateTokens(c.Content)
}
