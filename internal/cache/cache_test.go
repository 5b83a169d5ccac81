package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAdd(t *testing.T) {
	c, err := New[string](4)
	require.NoError(t, err)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Add("SwiftUI", "cached")
	v, ok := c.Get("SwiftUI")
	assert.True(t, ok)
	assert.Equal(t, "cached", v)
}

func TestEvictionAtBound(t *testing.T) {
	c, err := New[int](2)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestPurgeClearsEverything(t *testing.T) {
	c, err := New[int](8)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Purge()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	_, err := New[int](0)
	assert.Error(t, err)
}

func TestDocumentKeyDisambiguatesArticles(t *testing.T) {
	symbolKey := DocumentKey("SwiftUI", "drawing", false)
	articleKey := DocumentKey("SwiftUI", "drawing", true)
	assert.NotEqual(t, symbolKey, articleKey)

	// Same id in different archives never collides either.
	assert.NotEqual(t, DocumentKey("SwiftUI", "View", false), DocumentKey("UIKit", "View", false))
}
