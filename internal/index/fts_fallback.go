//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/bandhub/internal/models"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; song search uses LIKE over the songs table.
	return nil
}

func ftsReplaceSongs(_ *sql.Tx, _ []models.CatalogEntry) error { return nil }

// SearchSongs performs a LIKE-based search over song names and artists
// (fallback when FTS5 is not compiled in).
func (db *DB) SearchSongs(query string, limit int) ([]SongHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT `+hitColumns+`
		FROM songs s
		WHERE s.name LIKE ? ESCAPE '\' OR s.artist LIKE ? ESCAPE '\'
		ORDER BY s.name
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanHits(rows)
}
