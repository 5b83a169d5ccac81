package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docarc/docarc/internal/docc"
	"github.com/docarc/docarc/internal/errors"
)

// writeBundle creates a minimal archive bundle under root and returns its path.
func writeBundle(t *testing.T, root, name, displayName string, docs map[string]string) string {
	t.Helper()

	bundle := filepath.Join(root, name+docc.BundleSuffix)
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, docc.DataDirName), 0o755))

	meta := `{
		"schemaVersion": {"major": 0, "minor": 3, "patch": 0},
		"bundleIdentifier": "com.example.` + name + `",
		"bundleDisplayName": "` + displayName + `"
	}`
	require.NoError(t, os.WriteFile(filepath.Join(bundle, docc.MetadataFileName), []byte(meta), 0o644))

	for rel, title := range docs {
		path := filepath.Join(bundle, docc.DataDirName, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		doc := `{
			"identifier": {"url": "doc://com.example.` + name + `/` + rel + `"},
			"kind": "symbol",
			"metadata": {"title": "` + title + `"},
			"abstract": [{"type": "text", "text": "Abstract for ` + title + `."}]
		}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	}
	return bundle
}

func newCaches(t *testing.T) *Caches {
	t.Helper()
	caches, err := NewCaches(16, 64)
	require.NoError(t, err)
	return caches
}

func TestListDiscoversArchives(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", map[string]string{
		"documentation/swiftui/view.json": "View",
	})
	writeBundle(t, root, "UIKit", "UIKit", map[string]string{
		"documentation/uikit/uiview.json": "UIView",
	})
	// Non-bundle directories are ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-an-archive"), 0o755))

	loc := NewLocator([]string{root}, newCaches(t), nil)
	records, err := loc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "SwiftUI", records[0].Name)
	assert.Equal(t, "com.example.SwiftUI", records[0].BundleIdentifier)
	assert.Equal(t, "UIKit", records[1].Name)
	assert.Equal(t, 1, records[0].DocumentCount())
}

func TestListFirstRootWins(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeBundle(t, rootA, "SwiftUI", "SwiftUI from A", nil)
	writeBundle(t, rootB, "SwiftUI", "SwiftUI from B", nil)

	loc := NewLocator([]string{rootA, rootB}, newCaches(t), nil)
	records, err := loc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SwiftUI from A", records[0].DisplayName)
}

func TestListSkipsUnreadableRoots(t *testing.T) {
	good := t.TempDir()
	writeBundle(t, good, "SwiftUI", "SwiftUI", nil)

	loc := NewLocator([]string{filepath.Join(good, "does-not-exist"), good}, newCaches(t), nil)
	records, err := loc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFindCachesRecord(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", nil)

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)

	rec, err := loc.Find(context.Background(), "SwiftUI")
	require.NoError(t, err)
	assert.Equal(t, "SwiftUI", rec.Name)

	// Second lookup hits the cache and returns the identical record.
	again, err := loc.Find(context.Background(), "SwiftUI")
	require.NoError(t, err)
	assert.Same(t, rec, again)
}

func TestFindMissingArchive(t *testing.T) {
	loc := NewLocator([]string{t.TempDir()}, newCaches(t), nil)
	_, err := loc.Find(context.Background(), "Nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestResolveSymbolDirectPath(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", map[string]string{
		"documentation/swiftui/view.json": "View",
	})

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)
	res := NewResolver(loc, caches, nil)

	doc, err := res.ResolveSymbol(context.Background(), "SwiftUI", "documentation/swiftui/view")
	require.NoError(t, err)
	assert.Equal(t, "View", doc.Title())
}

func TestResolveSymbolByNameSearch(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", map[string]string{
		"documentation/swiftui/view.json": "View",
	})

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)
	res := NewResolver(loc, caches, nil)

	// Case-insensitive fallback finds view.json for id "View".
	doc, err := res.ResolveSymbol(context.Background(), "SwiftUI", "View")
	require.NoError(t, err)
	assert.Equal(t, "View", doc.Title())
}

func TestResolveDeterministicTieBreak(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", map[string]string{
		"documentation/zzz/shape.json": "Shape in zzz",
		"documentation/aaa/shape.json": "Shape in aaa",
	})

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)
	res := NewResolver(loc, caches, nil)

	// Candidates are sorted by normalized path, so documentation/aaa wins
	// regardless of filesystem enumeration order.
	doc, err := res.ResolveSymbol(context.Background(), "SwiftUI", "shape")
	require.NoError(t, err)
	assert.Equal(t, "Shape in aaa", doc.Title())
}

func TestResolveFirstRootUsedExclusively(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	// Root A has the archive but not the symbol; root B has both.
	writeBundle(t, rootA, "SwiftUI", "SwiftUI", nil)
	writeBundle(t, rootB, "SwiftUI", "SwiftUI", map[string]string{
		"documentation/swiftui/view.json": "View",
	})

	caches := newCaches(t)
	loc := NewLocator([]string{rootA, rootB}, caches, nil)
	res := NewResolver(loc, caches, nil)

	// The first root containing the archive directory is used exclusively;
	// the miss there is final even though root B could satisfy the lookup.
	_, err := res.ResolveSymbol(context.Background(), "SwiftUI", "View")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestResolveArticleTutorialsFirst(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", map[string]string{
		"tutorials/swiftui/drawing.json":     "Drawing Tutorial",
		"documentation/swiftui/drawing.json": "Drawing Reference",
	})

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)
	res := NewResolver(loc, caches, nil)

	doc, err := res.ResolveArticle(context.Background(), "SwiftUI", "drawing")
	require.NoError(t, err)
	assert.Equal(t, "Drawing Tutorial", doc.Title())

	// Symbol resolution has no such priority: normalized path order puts
	// documentation/ first.
	doc, err = res.ResolveSymbol(context.Background(), "SwiftUI", "drawing")
	require.NoError(t, err)
	assert.Equal(t, "Drawing Reference", doc.Title())
}

func TestResolveCachesDocument(t *testing.T) {
	root := t.TempDir()
	bundle := writeBundle(t, root, "SwiftUI", "SwiftUI", map[string]string{
		"documentation/swiftui/view.json": "View",
	})

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)
	res := NewResolver(loc, caches, nil)

	ctx := context.Background()
	_, err := res.ResolveSymbol(ctx, "SwiftUI", "View")
	require.NoError(t, err)

	// Remove the file; the cached document still resolves.
	require.NoError(t, os.Remove(filepath.Join(bundle, docc.DataDirName, "documentation", "swiftui", "view.json")))
	doc, err := res.ResolveSymbol(ctx, "SwiftUI", "View")
	require.NoError(t, err)
	assert.Equal(t, "View", doc.Title())

	// Clearing the cache makes the miss visible again.
	caches.Clear()
	_, err = res.ResolveSymbol(ctx, "SwiftUI", "View")
	assert.Error(t, err)
}

func TestResolveMalformedDocument(t *testing.T) {
	root := t.TempDir()
	bundle := writeBundle(t, root, "SwiftUI", "SwiftUI", nil)
	path := filepath.Join(bundle, docc.DataDirName, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)
	res := NewResolver(loc, caches, nil)

	_, err := res.ResolveSymbol(context.Background(), "SwiftUI", "broken")
	require.Error(t, err)
	assert.Equal(t, errors.CategoryMalformed, errors.GetCategory(err))
}

func TestBrowseArchive(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", map[string]string{
		"documentation/swiftui/view.json":  "View",
		"documentation/swiftui/shape.json": "Shape",
		"tutorials/intro.json":             "Intro",
	})

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)

	listing, err := loc.Browse(context.Background(), "SwiftUI", "")
	require.NoError(t, err)
	require.Len(t, listing.Entries, 2)
	assert.Equal(t, Entry{Name: "documentation", Type: "directory"}, listing.Entries[0])
	assert.Equal(t, Entry{Name: "tutorials", Type: "directory"}, listing.Entries[1])

	listing, err = loc.Browse(context.Background(), "SwiftUI", "documentation/swiftui")
	require.NoError(t, err)
	require.Len(t, listing.Entries, 2)
	assert.Equal(t, Entry{Name: "shape", Type: "document"}, listing.Entries[0])
	assert.Equal(t, Entry{Name: "view", Type: "document"}, listing.Entries[1])
	assert.Equal(t, "documentation/swiftui", listing.Path)
}

func TestBrowseRejectsEscape(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", nil)

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)

	// Path traversal is cleaned away; "../.." browses the data root.
	listing, err := loc.Browse(context.Background(), "SwiftUI", "../..")
	require.NoError(t, err)
	assert.Equal(t, "", listing.Path)
}

func TestBrowseMissingPath(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "SwiftUI", "SwiftUI", nil)

	caches := newCaches(t)
	loc := NewLocator([]string{root}, caches, nil)

	_, err := loc.Browse(context.Background(), "SwiftUI", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
