//go:build sqlite_fts5

package index

import (
	"testing"

	"github.com/starford/bandhub/internal/models"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM songs_fts`).Scan(&count); err != nil {
		t.Fatalf("songs_fts table missing: %v", err)
	}
}

func TestFTS5_PrefixSearch(t *testing.T) {
	db := testDB(t)
	if err := db.ReplaceSongs([]models.CatalogEntry{
		{Name: "Superstition", Artist: "Stevie Wonder", BPM: 100},
		{Name: "Higher Ground", Artist: "Stevie Wonder", BPM: 126},
		{Name: "Deal", Artist: "Grateful Dead", BPM: 120},
	}, "x"); err != nil {
		t.Fatal(err)
	}

	results, err := db.SearchSongs("super", 10)
	if err != nil {
		t.Fatalf("SearchSongs: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Superstition" {
		t.Fatalf("results = %+v", results)
	}

	results, _ = db.SearchSongs("stevie", 10)
	if len(results) != 2 {
		t.Errorf("artist search = %+v", results)
	}
}

func TestFTS5_QuotesAreSafe(t *testing.T) {
	db := testDB(t)
	if _, err := db.SearchSongs(`"unbalanced AND (`, 10); err != nil {
		t.Errorf("SearchSongs with syntax characters: %v", err)
	}
	if got := prefixQuery(`don't stop`); got != `"don't"* "stop"*` {
		t.Errorf("prefixQuery = %q", got)
	}
}
