package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// Chunker slides a fixed-size word window over text. Stateless and safe
// for concurrent use.
type Chunker struct {
	maxTokens     int
	overlapTokens int
}

// New creates a chunker with the given token and overlap budgets.
// Non-positive values fall back to the lexical defaults.
func New(maxTokens, overlapTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultLexicalMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultLexicalOverlapTokens
	}
	return &Chunker{maxTokens: maxTokens, overlapTokens: overlapTokens}
}

// NewVector creates a chunker with the vector engine's defaults.
func NewVector() *Chunker {
	return New(DefaultVectorMaxTokens, DefaultVectorOverlapTokens)
}

// NewLexical creates a chunker with the lexical engine's defaults.
func NewLexical() *Chunker {
	return New(DefaultLexicalMaxTokens, DefaultLexicalOverlapTokens)
}

// EstimateTokens approximates a token count from the word count.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(len(strings.Fields(text))) * wordsPerToken))
}

// Split breaks text into overlapping windows. Any non-empty input yields
// at least one window; whitespace-only input yields none. When the text
// fits the budget it comes back whole, untouched except for trimming.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	budget := int(float64(c.maxTokens) * wordsPerToken)
	if budget < 1 {
		budget = 1
	}
	if len(words) <= budget {
		return []string{strings.TrimSpace(text)}
	}

	overlap := int(float64(c.overlapTokens) * wordsPerToken)
	step := budget - overlap
	if step <= 0 {
		// A non-positive step would loop forever; emit once and stop.
		return []string{strings.Join(words[:budget], " ")}
	}

	var windows []string
	for start := 0; ; start += step {
		end := start + budget
		if end > len(words) {
			end = len(words)
		}
		if w := strings.TrimSpace(strings.Join(words[start:end], " ")); w != "" {
			windows = append(windows, w)
		}
		if end >= len(words) {
			break
		}
	}
	return windows
}

// Build splits text and wraps each window in a ContentChunk carrying the
// given provenance. Windows below the category floor are dropped here so
// both engines apply the same rule.
func (c *Chunker) Build(prov Provenance, category Category, text string) []*ContentChunk {
	windows := c.Split(text)
	chunks := make([]*ContentChunk, 0, len(windows))
	for i, w := range windows {
		if len(w) < category.MinLength() {
			continue
		}
		chunks = append(chunks, &ContentChunk{
			ID:         chunkID(prov.Archive, prov.DocumentID, w, i),
			Provenance: prov,
			Content:    w,
			Index:      i,
		})
	}
	return chunks
}

// chunkID derives a stable identifier from the chunk's origin and
// normalized content. The same document chunked twice produces the same
// ids, which makes reindexing idempotent.
func chunkID(archive, documentID, content string, index int) string {
	h := sha256.New()
	h.Write([]byte(archive))
	h.Write([]byte{0})
	h.Write([]byte(documentID))
	h.Write([]byte{0})
	h.Write([]byte(Normalize(content)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(index)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
