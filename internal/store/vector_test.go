package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docarc/docarc/internal/chunk"
	"github.com/docarc/docarc/internal/errors"
)

func seedVector(t *testing.T) *VectorIndex {
	t.Helper()
	idx := NewVectorIndex(nil)
	chunks := []*chunk.ContentChunk{
		testChunk("SwiftUI", "v1", "state management"),
		testChunk("SwiftUI", "v2", "text rendering"),
		testChunk("UIKit", "v3", "state restoration"),
	}
	embeddings := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	require.NoError(t, idx.Add(context.Background(), chunks, embeddings))
	return idx
}

func TestCosine(t *testing.T) {
	v := []float32{0.3, -0.4, 0.5}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
	assert.InDelta(t, -1.0, Cosine(v, []float32{-0.3, 0.4, -0.5}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)

	// Zero vectors score 0 instead of dividing by zero.
	assert.Equal(t, 0.0, Cosine([]float32{0, 0, 0}, v))
	assert.Equal(t, 0.0, Cosine(v, nil))
}

func TestVectorSearchRanksBySimilarity(t *testing.T) {
	idx := seedVector(t)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10, "")
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "v1", hits[0].Record.ID)
	assert.Equal(t, "v3", hits[1].Record.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Greater(t, hits[1].Score, hits[2].Score)
}

func TestVectorSearchLimitAndFilter(t *testing.T) {
	idx := seedVector(t)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2, "")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// The filter runs after the global cut: limit 1 keeps v1, and the
	// UIKit filter then removes it.
	hits, err = idx.Search(context.Background(), []float32{1, 0, 0}, 1, "UIKit")
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(context.Background(), []float32{1, 0, 0}, 10, "UIKit")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "v3", hits[0].Record.ID)
}

func TestVectorAddDeduplicates(t *testing.T) {
	idx := seedVector(t)
	require.NoError(t, idx.Add(context.Background(),
		[]*chunk.ContentChunk{testChunk("SwiftUI", "v1", "state management")},
		[][]float32{{1, 0, 0}}))
	assert.Equal(t, 3, idx.Count())
	assert.True(t, idx.Contains("v1"))
	assert.False(t, idx.Contains("v9"))
}

func TestVectorAddLengthMismatch(t *testing.T) {
	idx := NewVectorIndex(nil)
	err := idx.Add(context.Background(),
		[]*chunk.ContentChunk{testChunk("A", "x", "text")}, nil)
	assert.Error(t, err)
}

func TestVectorSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	idx := seedVector(t)
	require.NoError(t, idx.Save(dir))

	loaded := NewVectorIndex(nil)
	require.NoError(t, loaded.Load(dir))
	assert.Equal(t, 3, loaded.Count())
	assert.Equal(t, 3, loaded.Dimensions())

	want, err := idx.Search(context.Background(), []float32{0.9, 0.1, 0}, 10, "")
	require.NoError(t, err)
	got, err := loaded.Search(context.Background(), []float32{0.9, 0.1, 0}, 10, "")
	require.NoError(t, err)
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Record.ID, got[i].Record.ID)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-9)
	}
}

func TestVectorLoadMissingOrCorruptStartsEmpty(t *testing.T) {
	idx := NewVectorIndex(nil)
	require.NoError(t, idx.Load(t.TempDir()))
	assert.Equal(t, 0, idx.Count())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VectorFileName), []byte("[{"), 0o644))
	require.NoError(t, idx.Load(dir))
	assert.Equal(t, 0, idx.Count())
}

func TestMetaRoundTripAndCompatibility(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadMeta(dir)
	require.NoError(t, err)
	assert.Nil(t, missing)

	meta := NewMeta("nomic-embed-text", 768)
	require.NoError(t, meta.Save(dir))

	loaded, err := LoadMeta(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "nomic-embed-text", loaded.Model)
	assert.Equal(t, 768, loaded.Dimensions)

	assert.NoError(t, loaded.CheckCompatible("nomic-embed-text", 768))
	// Unknown current dimensions are not checked.
	assert.NoError(t, loaded.CheckCompatible("nomic-embed-text", 0))

	err = loaded.CheckCompatible("all-minilm", 384)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeModelMismatch, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err))
}
