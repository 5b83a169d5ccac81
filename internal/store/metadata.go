package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docarc/docarc/internal/errors"
)

// Meta records which embedding model built the vector index. Searching
// with a different model produces garbage similarities silently, so the
// mismatch is checked up front and treated as fatal.
type Meta struct {
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewMeta creates metadata for a fresh index.
func NewMeta(model string, dimensions int) *Meta {
	now := time.Now()
	return &Meta{
		Model:      model,
		Dimensions: dimensions,
		Version:    FormatVersion,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// LoadMeta reads index metadata from dir. A missing file returns
// (nil, nil): no vector index has been built yet.
func LoadMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.IOError("cannot read index metadata", err)
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Malformed("index metadata is not valid JSON", err)
	}
	return &m, nil
}

// Save writes the metadata file, refreshing the update timestamp.
func (m *Meta) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot create index directory", err)
	}
	m.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot encode index metadata", err)
	}
	path := filepath.Join(dir, MetaFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.ErrCodeSaveFailed, "cannot write index metadata", err).
			WithDetail("path", path)
	}
	return nil
}

// CheckCompatible verifies the current embedder matches the one that
// built the index.
func (m *Meta) CheckCompatible(model string, dimensions int) error {
	if m.Model != model || (dimensions > 0 && m.Dimensions > 0 && m.Dimensions != dimensions) {
		return errors.New(errors.ErrCodeModelMismatch,
			"index was built with a different embedding model", nil).
			WithDetail("index_model", m.Model).
			WithDetail("index_dimensions", strconv.Itoa(m.Dimensions)).
			WithDetail("current_model", model).
			WithDetail("current_dimensions", strconv.Itoa(dimensions)).
			WithSuggestion("rebuild the index with 'docarc index --rebuild'")
	}
	return nil
}
