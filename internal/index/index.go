package index

// SongIndex is the read side of the index used by the HTTP and MCP layers.
type SongIndex interface {
	SearchSongs(query string, limit int) ([]SongHit, error)
	Plays(name string) ([]Play, error)
	PlayCounts() (map[string]int, error)
	Unplayed() ([]string, error)
}

// Verify *DB satisfies SongIndex at compile time.
var _ SongIndex = (*DB)(nil)
