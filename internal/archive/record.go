// Package archive discovers documentation archives across configured search
// roots and resolves symbol and article documents inside them.
package archive

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/docarc/docarc/internal/cache"
	"github.com/docarc/docarc/internal/docc"
)

// Record describes one discovered archive. Records are created on first
// listing, cached, and never mutated afterwards; the document count is the
// only lazily computed field.
type Record struct {
	// Name is the archive name without the bundle suffix.
	Name string
	// DisplayName is the human-readable bundle name from the descriptor.
	DisplayName string
	// BundleIdentifier is the reverse-DNS bundle identifier.
	BundleIdentifier string
	// Path is the absolute bundle directory.
	Path string
	// SchemaVersion is the metadata schema version of the bundle.
	SchemaVersion docc.SchemaVersion

	countOnce sync.Once
	count     int
}

// DataDir returns the bundle's nested document directory.
func (r *Record) DataDir() string {
	return filepath.Join(r.Path, docc.DataDirName)
}

// DocumentCount returns the number of document files in the bundle, computed
// by a full recursive count on first use. Intentionally simple rather than
// incremental: archives are read-only bundles, so the count cannot drift
// within a process lifetime.
func (r *Record) DocumentCount() int {
	r.countOnce.Do(func() {
		_ = filepath.WalkDir(r.DataDir(), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree counts as empty
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
				r.count++
			}
			return nil
		})
	})
	return r.count
}

// Caches bundles the archive and document caches handed to the locator and
// resolver. Construct once, pass by reference.
type Caches struct {
	Archives  *cache.Cache[*Record]
	Documents *cache.Cache[*docc.Document]
}

// NewCaches creates bounded caches with the given entry limits.
func NewCaches(archiveEntries, documentEntries int) (*Caches, error) {
	archives, err := cache.New[*Record](archiveEntries)
	if err != nil {
		return nil, err
	}
	documents, err := cache.New[*docc.Document](documentEntries)
	if err != nil {
		return nil, err
	}
	return &Caches{Archives: archives, Documents: documents}, nil
}

// Clear drops every cached archive record and document.
func (c *Caches) Clear() {
	c.Archives.Purge()
	c.Documents.Purge()
}
