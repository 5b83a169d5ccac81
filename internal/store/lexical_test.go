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

func testChunk(archive, id, content string) *chunk.ContentChunk {
	return &chunk.ContentChunk{
		ID:         id,
		Provenance: chunk.Provenance{Archive: archive, DocumentID: id, Title: id},
		Content:    content,
	}
}

func seedLexical(t *testing.T) *LexicalIndex {
	t.Helper()
	idx := NewLexicalIndex(nil)
	require.NoError(t, idx.Add(context.Background(), []*chunk.ContentChunk{
		testChunk("SwiftUI", "c1", "Manage state with observable objects and bindings. State management drives view updates."),
		testChunk("SwiftUI", "c2", "A view that displays one or more lines of read-only text."),
		testChunk("UIKit", "c3", "State restoration preserves the app's user interface across launches."),
		testChunk("UIKit", "c4", "Core animation timing functions and keyframe animations."),
	}))
	return idx
}

func TestLexicalSearchRanksByRelevance(t *testing.T) {
	idx := seedLexical(t)

	hits, err := idx.Search(context.Background(), "state management", 10, "")
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	// The chunk matching both terms outranks the one matching only
	// "state"; the animation chunk matches nothing and is absent.
	assert.Equal(t, "c1", hits[0].Record.ID)
	for _, h := range hits {
		assert.Greater(t, h.Score, 0.0)
		assert.NotEqual(t, "c4", h.Record.ID)
	}
}

func TestLexicalSearchDeterministic(t *testing.T) {
	idx := seedLexical(t)

	first, err := idx.Search(context.Background(), "state", 10, "")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := idx.Search(context.Background(), "state", 10, "")
		require.NoError(t, err)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, first[j].Record.ID, again[j].Record.ID)
			assert.Equal(t, first[j].Score, again[j].Score)
		}
	}
}

func TestLexicalQueryNormalizationMatchesIngest(t *testing.T) {
	idx := NewLexicalIndex(nil)
	require.NoError(t, idx.Add(context.Background(), []*chunk.ContentChunk{
		testChunk("SwiftUI", "c1", "Configure the View.body property for custom layout."),
	}))

	// Punctuation and case differences normalize away on both sides.
	hits, err := idx.Search(context.Background(), "VIEW.BODY!", 10, "")
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestLexicalEmptyQuery(t *testing.T) {
	idx := seedLexical(t)

	_, err := idx.Search(context.Background(), "   ", 10, "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQueryEmpty, errors.GetCode(err))

	_, err = idx.Search(context.Background(), "!!!", 10, "")
	assert.Error(t, err)
}

func TestLexicalArchiveFilterAfterRanking(t *testing.T) {
	idx := seedLexical(t)

	global, err := idx.Search(context.Background(), "state", 10, "")
	require.NoError(t, err)

	filtered, err := idx.Search(context.Background(), "state", 10, "UIKit")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "c3", filtered[0].Record.ID)

	// Filtering preserves the global relative order.
	var want []string
	for _, h := range global {
		if h.Record.Metadata.Archive == "UIKit" {
			want = append(want, h.Record.ID)
		}
	}
	var got []string
	for _, h := range filtered {
		got = append(got, h.Record.ID)
	}
	assert.Equal(t, want, got)
}

func TestLexicalLimitAppliesBeforeFilter(t *testing.T) {
	idx := seedLexical(t)

	// Limit 1 keeps only the best global hit, which is a SwiftUI chunk;
	// the UIKit filter then leaves nothing.
	hits, err := idx.Search(context.Background(), "state management", 1, "UIKit")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestLexicalAddDeduplicates(t *testing.T) {
	idx := NewLexicalIndex(nil)
	batch := []*chunk.ContentChunk{
		testChunk("SwiftUI", "c1", "Manage state with observable objects."),
	}
	require.NoError(t, idx.Add(context.Background(), batch))
	require.NoError(t, idx.Add(context.Background(), batch))
	assert.Equal(t, 1, idx.Count())
}

func TestLexicalSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	idx := seedLexical(t)
	require.NoError(t, idx.Save(dir))

	// The persisted file rebuilds into an index that ranks identically.
	loaded := NewLexicalIndex(nil)
	require.NoError(t, loaded.Load(dir))
	assert.Equal(t, idx.Count(), loaded.Count())

	want, err := idx.Search(context.Background(), "state management", 10, "")
	require.NoError(t, err)
	got, err := loaded.Search(context.Background(), "state management", 10, "")
	require.NoError(t, err)
	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, want[i].Record.ID, got[i].Record.ID)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-12)
	}
}

func TestLexicalLoadMissingFileStartsEmpty(t *testing.T) {
	idx := NewLexicalIndex(nil)
	require.NoError(t, idx.Load(t.TempDir()))
	assert.Equal(t, 0, idx.Count())
}

func TestLexicalLoadCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LexicalFileName), []byte("{broken"), 0o644))

	idx := NewLexicalIndex(nil)
	require.NoError(t, idx.Load(dir))
	assert.Equal(t, 0, idx.Count())
}

func TestLexicalClosedRejectsMutation(t *testing.T) {
	idx := seedLexical(t)
	require.NoError(t, idx.Close())

	err := idx.Add(context.Background(), []*chunk.ContentChunk{testChunk("A", "x", "text")})
	assert.Error(t, err)
	_, err = idx.Search(context.Background(), "state", 10, "")
	assert.Error(t, err)
}

func TestLexicalStats(t *testing.T) {
	idx := seedLexical(t)
	stats := idx.Stats()
	assert.Equal(t, 4, stats.DocumentCount)
	assert.Greater(t, stats.TermCount, 10)
	assert.False(t, stats.UpdatedAt.IsZero())
}
