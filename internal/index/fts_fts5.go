//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/bandhub/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS songs_fts USING fts5(
			name,
			artist,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsReplaceSongs(tx *sql.Tx, entries []models.CatalogEntry) error {
	if _, err := tx.Exec(`DELETE FROM songs_fts`); err != nil {
		return fmt.Errorf("index: clear fts: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.Exec(`INSERT INTO songs_fts (name, artist) VALUES (?, ?)`, e.Name, e.Artist); err != nil {
			return fmt.Errorf("index: insert fts: %w", err)
		}
	}
	return nil
}

// prefixQuery turns free text into an FTS5 query of quoted prefix terms so
// user input never hits FTS5 syntax errors.
func prefixQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " ")
}

// SearchSongs performs an FTS5 search over song names and artists, best match first.
func (db *DB) SearchSongs(query string, limit int) ([]SongHit, error) {
	if limit <= 0 {
		limit = 20
	}
	q := prefixQuery(query)
	if q == "" {
		return []SongHit{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT `+hitColumns+`
		FROM songs_fts f
		JOIN songs s ON s.name = f.name
		WHERE songs_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanHits(rows)
}
