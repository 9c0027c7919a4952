// Package index keeps a derived SQLite view of the catalog and the setlist
// archive for song search and play history. The flat files stay the source
// of truth; the database can be deleted and rebuilt by Sync at any time.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS songs (
	name       TEXT PRIMARY KEY,
	artist     TEXT NOT NULL DEFAULT '',
	bpm        INTEGER NOT NULL DEFAULT 0,
	has_horn   INTEGER NOT NULL DEFAULT 0,
	has_vocals INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS setlists (
	path       TEXT PRIMARY KEY,
	venue      TEXT NOT NULL,
	date       TEXT NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS setlist_songs (
	setlist_path TEXT NOT NULL REFERENCES setlists(path) ON DELETE CASCADE,
	set_number   INTEGER NOT NULL,
	position     INTEGER NOT NULL,
	name         TEXT NOT NULL,
	bpm          INTEGER NOT NULL DEFAULT 0,
	UNIQUE(setlist_path, set_number, position)
);

CREATE INDEX IF NOT EXISTS idx_setlist_songs_name ON setlist_songs(name);
CREATE INDEX IF NOT EXISTS idx_setlists_venue ON setlists(venue);
`

const catalogChecksumKey = "catalog_checksum"

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
