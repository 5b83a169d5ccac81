package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docarc/docarc/internal/config"
	"github.com/docarc/docarc/internal/errors"
	"github.com/docarc/docarc/internal/store"
)

func TestStaticEmbedderRequiresLoad(t *testing.T) {
	e := NewStaticEmbedder()
	_, err := e.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))
	assert.True(t, errors.IsFatal(err))

	require.NoError(t, e.Load(context.Background()))
	v, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, v, StaticDimensions)
}

func TestStaticEmbedderDeterministic(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Load(context.Background()))

	a, err := e.Embed(context.Background(), "manage state with observable objects")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "manage state with observable objects")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Vectors come out unit length.
	assert.InDelta(t, 1.0, store.Cosine(a, a), 1e-6)

	// Related text lands closer than unrelated text.
	related, err := e.Embed(context.Background(), "observable state objects")
	require.NoError(t, err)
	unrelated, err := e.Embed(context.Background(), "quartz crystal oscillator frequency")
	require.NoError(t, err)
	assert.Greater(t, store.Cosine(a, related), store.Cosine(a, unrelated))
}

func TestStaticEmbedderEmptyText(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Load(context.Background()))

	v, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, StaticDimensions), v)
}

func newOllamaStub(t *testing.T, dims int, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)
		if calls != nil {
			calls.Add(1)
		}

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		inputs, ok := req.Input.([]any)
		require.True(t, ok)

		resp := ollamaEmbedResponse{Embeddings: make([][]float32, len(inputs))}
		for i := range inputs {
			v := make([]float32, dims)
			v[i%dims] = 2 // unnormalized on purpose
			resp.Embeddings[i] = v
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOllamaEmbedderLoadAndEmbed(t *testing.T) {
	srv := newOllamaStub(t, 4, nil)
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model"})
	defer func() { _ = e.Close() }()

	// Fails fast before Load.
	_, err := e.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.IsUnavailable(err))

	require.NoError(t, e.Load(context.Background()))
	assert.Equal(t, 4, e.Dimensions()) // auto-detected

	v, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, v, 4)
	// The stub's vector of length 2 is normalized to unit length.
	assert.InDelta(t, 1.0, float64(v[0]), 1e-6)
}

func TestOllamaEmbedderBatching(t *testing.T) {
	var calls atomic.Int64
	srv := newOllamaStub(t, 4, &calls)
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model", BatchSize: 2})
	defer func() { _ = e.Close() }()
	require.NoError(t, e.Load(context.Background()))
	calls.Store(0)

	texts := []string{"one", "two", "three", "  ", "five"}
	vectors, err := e.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 5)

	// Whitespace-only input embeds to zeros without a request; the four
	// real texts split into two batches of two.
	assert.Equal(t, make([]float32, 4), vectors[3])
	assert.Equal(t, int64(2), calls.Load())
}

func TestOllamaEmbedderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "missing"})
	err := e.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeModelUnreachable, errors.GetCode(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestCachedEmbedderServesRepeats(t *testing.T) {
	var calls atomic.Int64
	srv := newOllamaStub(t, 4, &calls)
	defer srv.Close()

	inner := NewOllamaEmbedder(OllamaConfig{Host: srv.URL, Model: "test-model"})
	e, err := NewCachedEmbedder(inner, 10)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()
	require.NoError(t, e.Load(context.Background()))
	calls.Store(0)

	first, err := e.Embed(context.Background(), "state management")
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "state management")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, 1, e.Len())
}

func TestCachedEmbedderBatchMixesHitsAndMisses(t *testing.T) {
	inner := NewStaticEmbedder()
	require.NoError(t, inner.Load(context.Background()))
	e, err := NewCachedEmbedder(inner, 10)
	require.NoError(t, err)

	warm, err := e.Embed(context.Background(), "alpha")
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(context.Background(), []string{"beta", "alpha", "gamma"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, warm, vectors[1])
	assert.Equal(t, 3, e.Len())
}

func TestRateLimitedEmbedderForwards(t *testing.T) {
	inner := NewStaticEmbedder()
	e := NewRateLimitedEmbedder(inner, 0) // unlimited
	require.NoError(t, e.Load(context.Background()))

	v, err := e.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Len(t, v, StaticDimensions)
	assert.Equal(t, "static", e.ModelName())
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.NewConfig().Embeddings
	cfg.Provider = "static"
	e, err := NewFromConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Load(context.Background()))
	assert.Equal(t, "static", e.ModelName())

	cfg.Provider = "typo"
	_, err = NewFromConfig(cfg)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}
