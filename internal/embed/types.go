// Package embed turns text into mean-pooled, L2-normalized embedding
// vectors, either through an Ollama model or a deterministic local
// fallback.
package embed

import (
	"context"
	"math"
	"time"
)

const (
	// DefaultBatchSize is the number of texts sent per embedding request.
	DefaultBatchSize = 32

	// MaxBatchSize caps a single request to keep memory bounded.
	MaxBatchSize = 256

	// DefaultTimeout bounds one embedding request.
	DefaultTimeout = 60 * time.Second

	// ColdTimeout bounds the first request, which may trigger a model
	// load on the Ollama side.
	ColdTimeout = 180 * time.Second
)

// Embedder generates embedding vectors. Load is a required one-time
// precondition: Embed and EmbedBatch fail fast with an unavailable
// error until it has succeeded, they never trigger a load themselves.
type Embedder interface {
	// Load verifies the model is reachable and resolves its dimensions.
	Load(ctx context.Context) error

	// Embed generates one vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts, preserving order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector width, 0 before Load.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}

// normalizeVector scales a vector to unit length. Zero vectors pass
// through untouched.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
