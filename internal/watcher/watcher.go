// Package watcher reloads the in-memory indices when another process
// rewrites the persisted index files. The serve process owns the read
// side only; ingest runs elsewhere and communicates through these
// files.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docarc/docarc/internal/store"
)

// DefaultDebounce coalesces the burst of write events one save
// produces into a single reload.
const DefaultDebounce = 500 * time.Millisecond

// IndexWatcher watches the index directory and reloads both indices
// after saves settle.
type IndexWatcher struct {
	dir      string
	lexical  *store.LexicalIndex
	vector   *store.VectorIndex
	debounce time.Duration
	logger   *slog.Logger

	fw *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	reloads int
}

// New creates a watcher over the index directory. Call Start to begin
// receiving events.
func New(dir string, lexical *store.LexicalIndex, vector *store.VectorIndex, logger *slog.Logger) (*IndexWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &IndexWatcher{
		dir:      dir,
		lexical:  lexical,
		vector:   vector,
		debounce: DefaultDebounce,
		logger:   logger,
		fw:       fw,
	}, nil
}

// Start consumes filesystem events until ctx is cancelled or the
// watcher is closed. Run it in its own goroutine.
func (w *IndexWatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("index_watch_error", slog.String("error", err.Error()))
		}
	}
}

// relevant reports whether an event touches a persisted index file.
func (w *IndexWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	switch filepath.Base(event.Name) {
	case store.LexicalFileName, store.VectorFileName:
		return true
	}
	return false
}

// scheduleReload arms the debounce timer, extending it while writes
// keep arriving.
func (w *IndexWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload re-reads both index files into the live indices.
func (w *IndexWatcher) reload() {
	if err := w.lexical.Load(w.dir); err != nil {
		w.logger.Warn("lexical_reload_failed", slog.String("error", err.Error()))
	}
	if err := w.vector.Load(w.dir); err != nil {
		w.logger.Warn("vector_reload_failed", slog.String("error", err.Error()))
	}

	w.mu.Lock()
	w.reloads++
	n := w.reloads
	w.mu.Unlock()

	w.logger.Info("index_reloaded",
		slog.String("dir", w.dir),
		slog.Int("documents", w.lexical.Count()),
		slog.Int("vectors", w.vector.Count()),
		slog.Int("reloads", n))
}

// Reloads reports how many reloads have completed.
func (w *IndexWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Close stops watching.
func (w *IndexWatcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fw.Close()
}
