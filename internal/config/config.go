// Package config loads and validates docarc configuration.
//
// Precedence, lowest to highest:
//  1. Built-in defaults (NewConfig)
//  2. User config (~/.config/docarc/config.yaml)
//  3. Project config (.docarc.yaml in the working directory)
//  4. DOCARC_* environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete docarc configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Archives   ArchivesConfig   `yaml:"archives" json:"archives"`
	Index      IndexConfig      `yaml:"index" json:"index"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

// ArchivesConfig configures where documentation archives are discovered.
type ArchivesConfig struct {
	// Roots is the ordered list of directories scanned for *.docarchive
	// bundles. Earlier roots win when the same archive name appears twice.
	Roots []string `yaml:"roots" json:"roots"`
}

// IndexConfig configures index persistence and ingest.
type IndexConfig struct {
	// Path is the directory holding text-index.json and embeddings.json.
	Path string `yaml:"path" json:"path"`

	// Workers is the bounded worker pool size for document extraction
	// during bulk ingest. Defaults to NumCPU.
	Workers int `yaml:"workers" json:"workers"`

	// LexicalChunkTokens is the token budget per lexical chunk.
	LexicalChunkTokens int `yaml:"lexical_chunk_tokens" json:"lexical_chunk_tokens"`
	// LexicalChunkOverlap is the overlap budget for lexical chunks.
	LexicalChunkOverlap int `yaml:"lexical_chunk_overlap" json:"lexical_chunk_overlap"`
	// VectorChunkTokens is the token budget per vector chunk. Smaller than
	// the lexical budget because embedding models have tighter input windows.
	VectorChunkTokens int `yaml:"vector_chunk_tokens" json:"vector_chunk_tokens"`
	// VectorChunkOverlap is the overlap budget for vector chunks.
	VectorChunkOverlap int `yaml:"vector_chunk_overlap" json:"vector_chunk_overlap"`
}

// SearchConfig configures query behavior.
type SearchConfig struct {
	// MaxResults is the default result limit for search operations.
	MaxResults int `yaml:"max_results" json:"max_results"`
	// Mode selects the default ranking engine: auto, lexical, or semantic.
	// Auto uses the vector engine when the embedding model is loaded and
	// falls back to lexical otherwise.
	Mode string `yaml:"mode" json:"mode"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "ollama" or "static".
	Provider string `yaml:"provider" json:"provider"`
	// Model is the embedding model name.
	Model string `yaml:"model" json:"model"`
	// Dimensions is the embedding dimension; 0 auto-detects from the model.
	Dimensions int `yaml:"dimensions" json:"dimensions"`
	// BatchSize is the number of texts per embedding request.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
	// RequestsPerSecond rate-limits embedding calls to the model server
	// during bulk ingest. 0 disables the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	// CacheSize is the LRU size of the query-embedding cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// CacheConfig bounds the archive and document caches.
// Both were unbounded process-lifetime maps in earlier designs; the explicit
// LRU bound prevents resource growth under high-cardinality lookup loads.
type CacheConfig struct {
	// ArchiveEntries is the maximum number of cached archive records.
	ArchiveEntries int `yaml:"archive_entries" json:"archive_entries"`
	// DocumentEntries is the maximum number of cached documents.
	DocumentEntries int `yaml:"document_entries" json:"document_entries"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
	// Watch reloads persisted indices when another process rewrites them.
	Watch bool `yaml:"watch" json:"watch"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Archives: ArchivesConfig{
			Roots: defaultRoots(),
		},
		Index: IndexConfig{
			Path:                defaultIndexPath(),
			Workers:             runtime.NumCPU(),
			LexicalChunkTokens:  1000,
			LexicalChunkOverlap: 100,
			VectorChunkTokens:   500,
			VectorChunkOverlap:  50,
		},
		Search: SearchConfig{
			MaxResults: 10,
			Mode:       "auto",
		},
		Embeddings: EmbeddingsConfig{
			Provider:          "ollama",
			Model:             "nomic-embed-text",
			Dimensions:        0, // auto-detect
			BatchSize:         32,
			OllamaHost:        "http://localhost:11434",
			RequestsPerSecond: 0,
			CacheSize:         1000,
		},
		Cache: CacheConfig{
			ArchiveEntries:  128,
			DocumentEntries: 2048,
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
			Watch:     false,
		},
	}
}

// defaultRoots returns the default archive search roots.
func defaultRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return []string{"."}
	}
	return []string{filepath.Join(home, ".docarc", "archives")}
}

// defaultIndexPath returns the default index directory.
func defaultIndexPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".docarc", "index")
	}
	return filepath.Join(home, ".docarc", "index")
}

// UserConfigPath returns the user-level config file path.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "docarc", "config.yaml")
}

// ProjectConfigName is the per-directory config file name.
const ProjectConfigName = ".docarc.yaml"

// Load builds the effective configuration from defaults, config files, and
// environment variables.
func Load(workDir string) (*Config, error) {
	cfg := NewConfig()

	if p := UserConfigPath(); p != "" {
		if err := mergeFile(cfg, p); err != nil {
			return nil, err
		}
	}
	if workDir != "" {
		if err := mergeFile(cfg, filepath.Join(workDir, ProjectConfigName)); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from a single explicit file over defaults.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays a YAML file onto cfg. A missing file is not an error.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays DOCARC_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCARC_ARCHIVE_ROOTS"); v != "" {
		cfg.Archives.Roots = splitList(v)
	}
	if v := os.Getenv("DOCARC_INDEX_PATH"); v != "" {
		cfg.Index.Path = v
	}
	if v := os.Getenv("DOCARC_INDEX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Index.Workers = n
		}
	}
	if v := os.Getenv("DOCARC_EMBED_PROVIDER"); v != "" {
		cfg.Embeddings.Provider = v
	}
	if v := os.Getenv("DOCARC_EMBED_MODEL"); v != "" {
		cfg.Embeddings.Model = v
	}
	if v := os.Getenv("DOCARC_OLLAMA_HOST"); v != "" {
		cfg.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("DOCARC_SEARCH_MODE"); v != "" {
		cfg.Search.Mode = v
	}
	if v := os.Getenv("DOCARC_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
}

// splitList splits a PATH-style list on the OS list separator, falling back
// to commas for portability in config snippets.
func splitList(v string) []string {
	sep := string(os.PathListSeparator)
	if !strings.Contains(v, sep) {
		sep = ","
	}
	parts := strings.Split(v, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if len(c.Archives.Roots) == 0 {
		return fmt.Errorf("archives.roots must list at least one search root")
	}
	if c.Index.Path == "" {
		return fmt.Errorf("index.path is required")
	}
	if c.Index.Workers <= 0 {
		return fmt.Errorf("index.workers must be positive, got %d", c.Index.Workers)
	}
	if c.Index.LexicalChunkTokens <= 0 || c.Index.VectorChunkTokens <= 0 {
		return fmt.Errorf("chunk token budgets must be positive")
	}
	if c.Index.LexicalChunkOverlap < 0 || c.Index.VectorChunkOverlap < 0 {
		return fmt.Errorf("chunk overlaps must be non-negative")
	}
	switch c.Search.Mode {
	case "auto", "lexical", "semantic":
	default:
		return fmt.Errorf("search.mode must be auto, lexical, or semantic, got %q", c.Search.Mode)
	}
	switch c.Embeddings.Provider {
	case "ollama", "static":
	default:
		return fmt.Errorf("embeddings.provider must be ollama or static, got %q", c.Embeddings.Provider)
	}
	if c.Embeddings.BatchSize <= 0 {
		return fmt.Errorf("embeddings.batch_size must be positive, got %d", c.Embeddings.BatchSize)
	}
	if c.Cache.ArchiveEntries <= 0 || c.Cache.DocumentEntries <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}
	if c.Server.Transport != "stdio" {
		return fmt.Errorf("server.transport %q not supported (supported: stdio)", c.Server.Transport)
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
