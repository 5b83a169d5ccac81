package archive

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docarc/docarc/internal/errors"
)

// Entry is one filesystem entry of a browsed archive directory.
type Entry struct {
	// Name is the entry name, without the .json suffix for document files.
	Name string `json:"name"`
	// Type is "directory" or "document".
	Type string `json:"type"`
}

// Listing is the result of browsing one archive directory.
type Listing struct {
	Archive string  `json:"archive"`
	Path    string  `json:"path"`
	Entries []Entry `json:"entries"`
}

// Browse lists the entries under relPath inside the named archive's data
// directory. An empty relPath browses the data directory root. Entries are
// sorted by name, directories first.
func (l *Locator) Browse(ctx context.Context, archiveName, relPath string) (*Listing, error) {
	rec, err := l.Find(ctx, archiveName)
	if err != nil {
		return nil, err
	}

	clean := filepath.Clean("/" + filepath.FromSlash(relPath))
	dir := filepath.Join(rec.DataDir(), clean)
	// The cleaned path is anchored at "/" above, so it cannot escape the
	// data directory; reject anything that still tries.
	if !strings.HasPrefix(dir, rec.DataDir()) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "path escapes the archive", nil)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(errors.ErrCodeInvalidPath,
				"path "+relPath+" not found in archive "+archiveName)
		}
		return nil, errors.IOError("cannot browse archive directory", err).
			WithDetail("path", dir)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() {
			entries = append(entries, Entry{Name: e.Name(), Type: "directory"})
			continue
		}
		if strings.HasSuffix(e.Name(), ".json") {
			entries = append(entries, Entry{
				Name: strings.TrimSuffix(e.Name(), ".json"),
				Type: "document",
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == "directory"
		}
		return entries[i].Name < entries[j].Name
	})

	return &Listing{
		Archive: archiveName,
		Path:    strings.TrimPrefix(filepath.ToSlash(clean), "/"),
		Entries: entries,
	}, nil
}
