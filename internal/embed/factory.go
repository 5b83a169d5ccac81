package embed

import (
	"github.com/docarc/docarc/internal/config"
	"github.com/docarc/docarc/internal/errors"
)

// NewFromConfig assembles the embedder stack for the configured
// provider: the base embedder wrapped in rate limiting (when set) and
// an LRU cache. The result still needs Load before use.
func NewFromConfig(cfg config.EmbeddingsConfig) (Embedder, error) {
	var base Embedder
	switch cfg.Provider {
	case "static":
		base = NewStaticEmbedder()
	case "", "ollama":
		base = NewOllamaEmbedder(OllamaConfig{
			Host:       cfg.OllamaHost,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
		})
	default:
		return nil, errors.New(errors.ErrCodeConfigInvalid,
			"unknown embedding provider "+cfg.Provider, nil).
			WithSuggestion("use 'ollama' or 'static'")
	}

	if cfg.RequestsPerSecond > 0 {
		base = NewRateLimitedEmbedder(base, cfg.RequestsPerSecond)
	}
	return NewCachedEmbedder(base, cfg.CacheSize)
}
