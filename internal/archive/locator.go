package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docarc/docarc/internal/docc"
	"github.com/docarc/docarc/internal/errors"
)

// Locator resolves archive names to filesystem bundles across an ordered
// list of search roots. The first root supplying an archive of a given name
// wins; later roots never merge into it.
type Locator struct {
	roots  []string
	caches *Caches
	logger *slog.Logger
}

// NewLocator creates a locator over the given search roots. The cache layer
// is required and shared with the resolver.
func NewLocator(roots []string, caches *Caches, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{roots: roots, caches: caches, logger: logger}
}

// Roots returns the configured search roots in priority order.
func (l *Locator) Roots() []string {
	return l.roots
}

// List discovers every archive across all roots. Unreadable roots are
// skipped with a logged warning; listing never aborts entirely. Records are
// returned sorted by name for stable output.
func (l *Locator) List(ctx context.Context) ([]*Record, error) {
	seen := make(map[string]*Record)

	for _, root := range l.roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			l.logger.Warn("archive_root_unreadable",
				slog.String("root", root),
				slog.String("error", err.Error()))
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasSuffix(entry.Name(), docc.BundleSuffix) {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), docc.BundleSuffix)
			if _, dup := seen[name]; dup {
				// First root wins; no cross-root merge.
				continue
			}

			rec, err := l.loadRecord(name, filepath.Join(root, entry.Name()))
			if err != nil {
				l.logger.Warn("archive_metadata_unreadable",
					slog.String("archive", name),
					slog.String("root", root),
					slog.String("error", err.Error()))
				continue
			}
			seen[name] = rec
		}
	}

	records := make([]*Record, 0, len(seen))
	for _, rec := range seen {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// Find resolves a single archive by name, consulting the cache first and the
// roots in priority order on a miss.
func (l *Locator) Find(ctx context.Context, name string) (*Record, error) {
	if rec, ok := l.caches.Archives.Get(name); ok {
		return rec, nil
	}

	for _, root := range l.roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		bundlePath := filepath.Join(root, name+docc.BundleSuffix)
		info, err := os.Stat(bundlePath)
		if err != nil || !info.IsDir() {
			continue
		}

		rec, err := l.loadRecord(name, bundlePath)
		if err != nil {
			l.logger.Warn("archive_metadata_unreadable",
				slog.String("archive", name),
				slog.String("path", bundlePath),
				slog.String("error", err.Error()))
			continue
		}
		return rec, nil
	}

	return nil, errors.NotFound(errors.ErrCodeArchiveNotFound,
		"archive "+name+" not found in any configured root").
		WithDetail("archive", name)
}

// loadRecord reads a bundle descriptor and caches the resulting record.
func (l *Locator) loadRecord(name, bundlePath string) (*Record, error) {
	if rec, ok := l.caches.Archives.Get(name); ok {
		return rec, nil
	}

	data, err := os.ReadFile(filepath.Join(bundlePath, docc.MetadataFileName))
	if err != nil {
		return nil, errors.IOError("cannot read archive descriptor", err)
	}
	meta, err := docc.ParseMetadata(data)
	if err != nil {
		return nil, errors.Malformed("archive descriptor is not valid JSON", err)
	}

	rec := &Record{
		Name:             name,
		DisplayName:      meta.BundleDisplayName,
		BundleIdentifier: meta.BundleIdentifier,
		Path:             bundlePath,
		SchemaVersion:    meta.SchemaVersion,
	}
	if rec.DisplayName == "" {
		rec.DisplayName = name
	}

	l.caches.Archives.Add(name, rec)
	return rec, nil
}
