package embed

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedEmbedder throttles requests to the wrapped embedder.
// Useful when Ollama shares a machine with other workloads and bulk
// indexing should not monopolize it.
type RateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

var _ Embedder = (*RateLimitedEmbedder)(nil)

// NewRateLimitedEmbedder wraps inner, allowing requestsPerSecond calls
// with a burst of one. Non-positive rates disable limiting.
func NewRateLimitedEmbedder(inner Embedder, requestsPerSecond float64) *RateLimitedEmbedder {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &RateLimitedEmbedder{inner: inner, limiter: limiter}
}

// Load loads the wrapped embedder without consuming rate budget.
func (e *RateLimitedEmbedder) Load(ctx context.Context) error {
	return e.inner.Load(ctx)
}

// Embed waits for rate budget, then forwards.
func (e *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return e.inner.Embed(ctx, text)
}

// EmbedBatch waits once per batch; the batch is a single request
// downstream.
func (e *RateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return e.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped embedder's width.
func (e *RateLimitedEmbedder) Dimensions() int { return e.inner.Dimensions() }

// ModelName returns the wrapped embedder's model.
func (e *RateLimitedEmbedder) ModelName() string { return e.inner.ModelName() }

// Close closes the wrapped embedder.
func (e *RateLimitedEmbedder) Close() error { return e.inner.Close() }
