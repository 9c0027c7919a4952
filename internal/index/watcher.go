package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/storage"
)

// EventCallback is called for every index change a watcher-driven sync
// makes. kind is one of the Kind* constants.
type EventCallback func(kind string, path string)

// debounce is how long the watcher waits for file activity to settle
// before resyncing. Atomic writes produce several events per save.
const debounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the data root and resyncs the index
// whenever the catalog or a setlist changes, until ctx is cancelled. It
// calls cb (if non-nil) for each change the resync made.
//
// New directories created at runtime are automatically added to the watch
// list, so a setlist saved into a fresh venue directory is picked up.
func Watch(ctx context.Context, db *DB, store storage.Provider, layout library.Layout, logger *slog.Logger, cb EventCallback) error {
	root := store.Root()
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(debounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			changes, err := Sync(db, store, layout, logger)
			if err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			}
			for _, c := range changes {
				logger.Debug("watcher: indexed", slog.String("path", c.Path), slog.String("kind", c.Kind))
				if cb != nil {
					cb(c.Kind, c.Path)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			if relevant(layout, filepath.ToSlash(rel)) {
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant reports whether a change at rel can affect the index: the
// catalog file itself or anything under the setlists directory. Temp files
// from atomic writes are ignored; their final rename is what counts.
func relevant(layout library.Layout, rel string) bool {
	if strings.HasPrefix(path.Base(rel), storage.TempPrefix) {
		return false
	}
	if rel == path.Clean(layout.CatalogFile) {
		return true
	}
	setlists := path.Clean(layout.SetlistsDir)
	return rel == setlists || strings.HasPrefix(rel, setlists+"/")
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
