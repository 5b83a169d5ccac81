package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/docarc/docarc/internal/errors"
)

// DefaultOllamaHost is the local Ollama endpoint.
const DefaultOllamaHost = "http://localhost:11434"

// DefaultOllamaModel is the embedding model requested when none is
// configured.
const DefaultOllamaModel = "nomic-embed-text"

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	Host       string
	Model      string
	Dimensions int // 0 auto-detects from the first embedding
	BatchSize  int
	Timeout    time.Duration
}

// OllamaEmbedder generates embeddings through Ollama's /api/embed
// endpoint. Vectors come back mean-pooled from the model and are
// L2-normalized here before use.
type OllamaEmbedder struct {
	client *http.Client
	config OllamaConfig

	mu     sync.RWMutex
	loaded bool
	closed bool
	model  string
	dims   int
}

var _ Embedder = (*OllamaEmbedder)(nil)

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaEmbedder creates the embedder without contacting the server;
// call Load before embedding.
func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize > MaxBatchSize {
		cfg.BatchSize = MaxBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &OllamaEmbedder{
		// No client-level timeout: per-request contexts carry it, and
		// the cold first request needs a longer bound than warm ones.
		client: &http.Client{},
		config: cfg,
		model:  cfg.Model,
		dims:   cfg.Dimensions,
	}
}

// Load verifies the server is reachable and detects the model's
// dimensions with a probe embedding. The first call may wait for Ollama
// to load the model into memory.
func (e *OllamaEmbedder) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.InternalError("embedder is closed", nil)
	}
	if e.loaded {
		return nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, ColdTimeout)
	defer cancel()

	vectors, err := e.request(loadCtx, []string{"dimension probe"})
	if err != nil {
		return errors.New(errors.ErrCodeModelUnreachable,
			"cannot load embedding model "+e.model, err).
			WithDetail("host", e.config.Host).
			WithSuggestion("check that Ollama is running and the model is pulled")
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return errors.New(errors.ErrCodeModelUnreachable,
			"model "+e.model+" returned an empty embedding", nil)
	}
	if e.dims == 0 {
		e.dims = len(vectors[0])
	}
	e.loaded = true
	return nil
}

// Embed generates one normalized vector.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates normalized vectors for texts, splitting into
// configured batch sizes. Whitespace-only texts embed to zero vectors
// without a request.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	pending := make([]string, 0, len(texts))
	pendingIdx := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = make([]float32, e.Dimensions())
			continue
		}
		pending = append(pending, t)
		pendingIdx = append(pendingIdx, i)
	}

	for start := 0; start < len(pending); start += e.config.BatchSize {
		end := start + e.config.BatchSize
		if end > len(pending) {
			end = len(pending)
		}

		reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
		vectors, err := e.request(reqCtx, pending[start:end])
		cancel()
		if err != nil {
			return nil, errors.New(errors.ErrCodeEmbeddingFailed,
				"embedding request failed", err).
				WithDetail("model", e.ModelName()).
				WithDetail("batch_size", strconv.Itoa(end-start))
		}
		if len(vectors) != end-start {
			return nil, errors.New(errors.ErrCodeEmbeddingFailed,
				"embedding count does not match input count", nil).
				WithDetail("want", strconv.Itoa(end-start)).
				WithDetail("got", strconv.Itoa(len(vectors)))
		}
		for i, v := range vectors {
			out[pendingIdx[start+i]] = normalizeVector(v)
		}
	}
	return out, nil
}

// request performs one /api/embed call.
func (e *OllamaEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.config.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.New(errors.ErrCodeEmbeddingFailed,
			"ollama returned status "+resp.Status, nil).
			WithDetail("body", strings.TrimSpace(string(respBody)))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Embeddings, nil
}

// ready fails fast when the model has not been loaded. This is a
// precondition check, not a retry trigger.
func (e *OllamaEmbedder) ready() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return errors.InternalError("embedder is closed", nil)
	}
	if !e.loaded {
		return errors.Unavailable("embedding model " + e.model + " is not loaded")
	}
	return nil
}

// Dimensions returns the detected vector width.
func (e *OllamaEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dims
}

// ModelName returns the configured model.
func (e *OllamaEmbedder) ModelName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

// Close releases idle connections.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.client.CloseIdleConnections()
	return nil
}
