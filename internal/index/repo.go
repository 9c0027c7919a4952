package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/bandhub/internal/models"
)

// SetlistRow represents a row in the setlists table.
type SetlistRow struct {
	Path      string
	Venue     string
	Date      string
	Checksum  string
	UpdatedAt time.Time
}

// SongHit is one search result.
type SongHit struct {
	Name   string `json:"name"`
	Artist string `json:"artist,omitempty"`
	BPM    int    `json:"bpm"`
	Horn   bool   `json:"has_horn"`
	Vocals bool   `json:"has_vocals"`
	Plays  int    `json:"plays"`
}

// Play is one appearance of a song in an archived setlist. Set and
// Position are 1-based.
type Play struct {
	Path     string `json:"path"`
	Venue    string `json:"venue"`
	Date     string `json:"date"`
	Set      int    `json:"set"`
	Position int    `json:"position"`
}

// ReplaceSongs swaps the whole songs table for entries and records the
// catalog checksum they came from.
func (db *DB) ReplaceSongs(entries []models.CatalogEntry, checksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM songs`); err != nil {
		return fmt.Errorf("index: clear songs: %w", err)
	}
	if len(entries) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO songs (name, artist, bpm, has_horn, has_vocals) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare song insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.Exec(e.Name, e.Artist, e.BPM, e.Markers.Horn, e.Markers.Vocals); err != nil {
				return fmt.Errorf("index: insert song %q: %w", e.Name, err)
			}
		}
	}
	if err := ftsReplaceSongs(tx, entries); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, catalogChecksumKey, checksum); err != nil {
		return fmt.Errorf("index: store catalog checksum: %w", err)
	}
	return tx.Commit()
}

// CatalogChecksum returns the checksum of the last indexed catalog, or ""
// when none has been indexed.
func (db *DB) CatalogChecksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, catalogChecksumKey).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: catalog checksum: %w", err)
	}
	return cs, nil
}

// UpsertSetlist inserts or replaces a setlist and its song slots.
func (db *DB) UpsertSetlist(row SetlistRow, sl *models.Setlist) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO setlists (path, venue, date, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			venue      = excluded.venue,
			date       = excluded.date,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, row.Path, row.Venue, row.Date, row.Checksum, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert setlist: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM setlist_songs WHERE setlist_path = ?`, row.Path); err != nil {
		return fmt.Errorf("index: clear setlist songs: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO setlist_songs (setlist_path, set_number, position, name, bpm) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare setlist song insert: %w", err)
	}
	defer stmt.Close()
	for i, songs := range sl.Sets {
		for j, song := range songs {
			if _, err := stmt.Exec(row.Path, i+1, j+1, song.Name, song.BPM); err != nil {
				return fmt.Errorf("index: insert setlist song: %w", err)
			}
		}
	}
	return tx.Commit()
}

// DeleteSetlist removes a setlist and, through the foreign key, its songs.
func (db *DB) DeleteSetlist(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM setlists WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete setlist: %w", err)
	}
	return nil
}

// SetlistChecksums returns the stored checksum of every indexed setlist.
func (db *DB) SetlistChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM setlists`)
	if err != nil {
		return nil, fmt.Errorf("index: setlist checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Plays lists every archived appearance of the song, newest show first.
func (db *DB) Plays(name string) ([]Play, error) {
	rows, err := db.conn.Query(`
		SELECT s.path, s.venue, s.date, ss.set_number, ss.position
		FROM setlist_songs ss
		JOIN setlists s ON s.path = ss.setlist_path
		WHERE ss.name = ?
		ORDER BY s.date DESC, s.path, ss.set_number, ss.position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("index: plays: %w", err)
	}
	defer rows.Close()

	out := []Play{}
	for rows.Next() {
		var p Play
		if err := rows.Scan(&p.Path, &p.Venue, &p.Date, &p.Set, &p.Position); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PlayCounts returns how many archived slots each song name fills.
func (db *DB) PlayCounts() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT name, count(*) FROM setlist_songs GROUP BY name`)
	if err != nil {
		return nil, fmt.Errorf("index: play counts: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, rows.Err()
}

// Unplayed returns catalog songs that appear in no archived setlist, by name.
func (db *DB) Unplayed() ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT name FROM songs
		WHERE name NOT IN (SELECT DISTINCT name FROM setlist_songs)
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("index: unplayed: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func scanHits(rows *sql.Rows) ([]SongHit, error) {
	defer rows.Close()
	out := []SongHit{}
	for rows.Next() {
		var h SongHit
		if err := rows.Scan(&h.Name, &h.Artist, &h.BPM, &h.Horn, &h.Vocals, &h.Plays); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

const hitColumns = `s.name, s.artist, s.bpm, s.has_horn, s.has_vocals,
	(SELECT count(*) FROM setlist_songs ss WHERE ss.name = s.name)`
