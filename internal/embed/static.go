package embed

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/docarc/docarc/internal/chunk"
	"github.com/docarc/docarc/internal/errors"
)

// StaticDimensions is the vector width of the static embedder.
const StaticDimensions = 256

// Feature weights for static vector generation.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// StaticEmbedder generates deterministic hash-based embeddings with no
// network or model download. Semantic quality is crude, but identical
// text always embeds identically, which is what tests and offline use
// need.
type StaticEmbedder struct {
	mu     sync.RWMutex
	loaded bool
	closed bool
}

var _ Embedder = (*StaticEmbedder)(nil)

// NewStaticEmbedder creates a static embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// Load marks the embedder ready. It cannot fail, but the precondition
// is enforced the same way as for remote models.
func (e *StaticEmbedder) Load(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.InternalError("embedder is closed", nil)
	}
	e.loaded = true
	return nil
}

// Embed generates one normalized vector.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, StaticDimensions), nil
	}

	vector := make([]float32, StaticDimensions)
	for _, token := range chunk.Tokens(trimmed) {
		vector[hashToIndex(token)] += tokenWeight
	}
	normalized := chunk.Normalize(trimmed)
	for _, ngram := range extractNgrams(normalized, ngramSize) {
		vector[hashToIndex(ngram)] += ngramWeight
	}
	return normalizeVector(vector), nil
}

// EmbedBatch generates vectors for texts in order.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimensions returns the fixed static width.
func (e *StaticEmbedder) Dimensions() int { return StaticDimensions }

// ModelName identifies the static embedder.
func (e *StaticEmbedder) ModelName() string { return "static" }

// Close marks the embedder unusable.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *StaticEmbedder) ready() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return errors.InternalError("embedder is closed", nil)
	}
	if !e.loaded {
		return errors.Unavailable("static embedder is not loaded")
	}
	return nil
}

// hashToIndex maps a feature string to a vector slot.
func hashToIndex(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(StaticDimensions))
}

// extractNgrams returns the character n-grams of s.
func extractNgrams(s string, n int) []string {
	runes := []rune(s)
	if len(runes) < n {
		return nil
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}
