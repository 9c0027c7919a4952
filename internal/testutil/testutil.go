// Package testutil provides shared test helpers for setting up data roots and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/bandhub/internal/storage"
)

// CatalogPath is the catalog location used by the default library layout.
const CatalogPath = "songlist/Buckingham Conspiracy 3.0  SONG LIST/Buckingham Conspiracy 3.0  SONG LIST.md"

// Catalog is a small catalog in the band's file format.
const Catalog = "# ****Buckingham Conspiracy 3.0 : SONG LIST ****  \n" +
	"  \n" +
	"#   \n" +
	"Cocaine - JJ Cale (100)  \n" +
	"Deal - Grateful Dead (120)  \n" +
	"Superstition - Stevie Wonder^🎺 ^ (100)  \n" +
	"Time - Pink Floyd^🥁^ (60)  \n" +
	"  \n"

// Setlist is one archived show, meant for "setlists/The Cat's Cradle Setlist (030725)/".
const Setlist = "# ****The Cat's Cradle Setlist (03/07/25)****  \n" +
	"  \n" +
	"# - Travis sit-in  \n" +
	"🎺 - Horn  \n" +
	"  \n" +
	"# ****—SET 1****  \n" +
	"Cocaine (100)  \n" +
	"Deal  \n" +
	"#   \n" +
	"# ****—-SET 2****  \n" +
	"Superstition (100)  \n" +
	"#   \n" +
	"# ****—-SET 3****  \n" +
	"Cocaine (100)  \n"

// SetlistPath is where Setlist is written by Seed.
const SetlistPath = "setlists/The Cat's Cradle Setlist (030725)/The Cat's Cradle Setlist (030725).md"

// TestDataRoot creates a temporary data root with a storage.Provider.
func TestDataRoot(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Seed writes Catalog and Setlist into store at their default locations.
func Seed(t *testing.T, store storage.Provider) {
	t.Helper()
	WriteFile(t, store, CatalogPath, Catalog)
	WriteFile(t, store, SetlistPath, Setlist)
}

// WriteFile writes content to path or fails the test.
func WriteFile(t *testing.T, store storage.Provider, path, content string) {
	t.Helper()
	if err := store.Write(path, []byte(content)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// DBPath returns a temporary SQLite file path that is removed after the test.
func DBPath(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "bandhub-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}
