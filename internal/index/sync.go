package index

import (
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"slices"

	"github.com/starford/bandhub/internal/checksum"
	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/models"
	"github.com/starford/bandhub/internal/parser"
	"github.com/starford/bandhub/internal/storage"
)

// Change kinds reported by Sync and Watch.
const (
	KindCatalogUpdated = "catalog.updated"
	KindSetlistCreated = "setlist.created"
	KindSetlistUpdated = "setlist.updated"
	KindSetlistDeleted = "setlist.deleted"
)

// Change is one index mutation caused by a file change.
type Change struct {
	Kind string
	Path string
}

// Sync brings the index up to date with the data root:
//   - the catalog is reindexed when its checksum changed (or it vanished)
//   - new/changed setlists are parsed and upserted
//   - setlists removed from disk are deleted from the index
//
// Per-file failures are logged and skipped; only listing errors abort.
func Sync(db *DB, store storage.Provider, layout library.Layout, logger *slog.Logger) ([]Change, error) {
	var changes []Change

	changed, err := syncCatalog(db, store, layout, logger)
	if err != nil {
		return nil, err
	}
	if changed {
		changes = append(changes, Change{Kind: KindCatalogUpdated, Path: layout.CatalogFile})
	}

	metas, err := store.List(layout.SetlistsDir, ".md")
	if err != nil {
		return changes, err
	}
	checksums, err := db.SetlistChecksums()
	if err != nil {
		return changes, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		dir, ok := layout.SetlistDirName(m.Path)
		if !ok {
			continue
		}
		disk[m.Path] = struct{}{}

		old, known := checksums[m.Path]
		if known && old == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		sl, _ := parser.ParseSetlist(data, dir)
		row := SetlistRow{
			Path:      m.Path,
			Venue:     sl.Venue,
			Date:      sl.Date,
			Checksum:  checksum.Sum(data),
			UpdatedAt: m.UpdatedAt,
		}
		if err := db.UpsertSetlist(row, sl); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path))
		kind := KindSetlistUpdated
		if !known {
			kind = KindSetlistCreated
		}
		changes = append(changes, Change{Kind: kind, Path: m.Path})
	}

	// Remove stale entries.
	for _, p := range slices.Sorted(maps.Keys(checksums)) {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteSetlist(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		changes = append(changes, Change{Kind: KindSetlistDeleted, Path: p})
	}

	return changes, nil
}

// syncCatalog reindexes the songs table when the catalog file changed. A
// missing catalog empties the table.
func syncCatalog(db *DB, store storage.Provider, layout library.Layout, logger *slog.Logger) (bool, error) {
	old, err := db.CatalogChecksum()
	if err != nil {
		return false, err
	}

	data, err := store.Read(layout.CatalogFile)
	if errors.Is(err, fs.ErrNotExist) {
		if old == "" {
			return false, nil
		}
		logger.Warn("sync: catalog missing, clearing songs", slog.String("path", layout.CatalogFile))
		return true, db.ReplaceSongs(nil, "")
	}
	if err != nil {
		return false, err
	}

	cs := checksum.Sum(data)
	if cs == old {
		return false, nil
	}
	cat, rep := parser.ParseCatalog(data)
	if !rep.Clean() {
		logger.Debug("sync: catalog parse report",
			slog.Int("skipped", len(rep.Skipped)),
			slog.Int("duplicates", len(rep.Duplicates)))
	}
	entries := make([]models.CatalogEntry, 0, len(cat.Entries))
	for _, name := range slices.Sorted(maps.Keys(cat.Entries)) {
		entries = append(entries, cat.Entries[name])
	}
	if err := db.ReplaceSongs(entries, cs); err != nil {
		return false, err
	}
	logger.Debug("sync: catalog indexed", slog.Int("songs", len(entries)))
	return true, nil
}
