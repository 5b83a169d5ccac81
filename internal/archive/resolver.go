package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docarc/docarc/internal/cache"
	"github.com/docarc/docarc/internal/docc"
	"github.com/docarc/docarc/internal/errors"
)

// Article resolution probes these subtrees of the data directory in order
// before falling back to a generic search. This is a relevance heuristic:
// narrative documents overwhelmingly live under tutorials/ and
// documentation/, so probing them first finds the right file sooner.
var articleSubtrees = []string{"tutorials", "documentation"}

// Resolver finds the document file for a symbol or article id within a
// resolved archive.
//
// Root selection is deliberate and worth knowing: the first configured root
// containing an archive directory of the requested name is used exclusively
// for the whole call, even when the target file is absent there. Other roots
// are not retried. This is a documented limitation of the lookup contract,
// not an accident.
type Resolver struct {
	locator *Locator
	caches  *Caches
	logger  *slog.Logger
}

// NewResolver creates a resolver sharing the locator's cache layer.
func NewResolver(locator *Locator, caches *Caches, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{locator: locator, caches: caches, logger: logger}
}

// ResolveSymbol loads the document for a symbol id from the named archive.
func (r *Resolver) ResolveSymbol(ctx context.Context, archiveName, id string) (*docc.Document, error) {
	return r.resolve(ctx, archiveName, id, false)
}

// ResolveArticle loads the document for an article or tutorial id, probing
// the tutorials and documentation subtrees before the rest of the bundle.
func (r *Resolver) ResolveArticle(ctx context.Context, archiveName, id string) (*docc.Document, error) {
	return r.resolve(ctx, archiveName, id, true)
}

func (r *Resolver) resolve(ctx context.Context, archiveName, id string, article bool) (*docc.Document, error) {
	key := cache.DocumentKey(archiveName, id, article)
	if doc, ok := r.caches.Documents.Get(key); ok {
		return doc, nil
	}

	rec, err := r.locator.Find(ctx, archiveName)
	if err != nil {
		return nil, err
	}

	path, err := r.locate(ctx, rec, id, article)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("cannot read document file", err).
			WithDetail("path", path)
	}
	doc, err := docc.ParseDocument(data)
	if err != nil {
		return nil, errors.Malformed("document file is not valid JSON", err).
			WithDetail("path", path)
	}

	r.caches.Documents.Add(key, doc)
	return doc, nil
}

// locate finds the document file path for an id inside the chosen bundle.
func (r *Resolver) locate(ctx context.Context, rec *Record, id string, article bool) (string, error) {
	dataDir := rec.DataDir()

	// Ids carrying a path separator get a direct probe first; the data
	// layout mirrors the documentation hierarchy, so the expected path
	// usually exists.
	if strings.ContainsRune(id, '/') {
		candidates := []string{
			filepath.Join(dataDir, filepath.FromSlash(id)+".json"),
			filepath.Join(dataDir, filepath.FromSlash(strings.ToLower(id))+".json"),
		}
		for _, c := range candidates {
			if info, err := os.Stat(c); err == nil && !info.IsDir() {
				return c, nil
			}
		}
	}

	base := filepath.Base(filepath.FromSlash(id)) + ".json"

	if article {
		for _, sub := range articleSubtrees {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			if path := findByName(filepath.Join(dataDir, sub), base); path != "" {
				return path, nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path := findByName(dataDir, base); path != "" {
		return path, nil
	}

	code := errors.ErrCodeSymbolNotFound
	if article {
		code = errors.ErrCodeArticleNotFound
	}
	return "", errors.NotFound(code, id+" not found in archive "+rec.Name).
		WithDetail("archive", rec.Name).
		WithDetail("id", id)
}

// findByName searches dir recursively for a file whose name matches base,
// preferring exact matches over case-insensitive ones. Candidates are sorted
// by normalized path before selection, so resolution does not depend on
// filesystem enumeration order.
func findByName(dir, base string) string {
	var exact, insensitive []string
	lowerBase := strings.ToLower(base)

	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable subtrees, keep walking
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case d.Name() == base:
			exact = append(exact, path)
		case strings.ToLower(d.Name()) == lowerBase:
			insensitive = append(insensitive, path)
		}
		return nil
	})

	pick := func(paths []string) string {
		if len(paths) == 0 {
			return ""
		}
		sort.Slice(paths, func(i, j int) bool {
			return normalizePath(paths[i]) < normalizePath(paths[j])
		})
		return paths[0]
	}

	if p := pick(exact); p != "" {
		return p
	}
	return pick(insensitive)
}

// normalizePath canonicalizes a path for deterministic tie-breaking.
func normalizePath(p string) string {
	return strings.ToLower(filepath.ToSlash(p))
}
