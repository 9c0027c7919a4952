package library

import (
	"path"
	"strings"

	"github.com/starford/bandhub/internal/parser"
)

// Layout locates the band data inside the data root. All paths are relative
// to the root and use forward slashes.
type Layout struct {
	CatalogFile string `yaml:"catalog_file"`
	SetlistsDir string `yaml:"setlists_dir"`
	TabsDir     string `yaml:"tabs_dir"`
	LyricsDir   string `yaml:"lyrics_dir"`
}

// DefaultLayout mirrors the directory tree the band has always kept.
func DefaultLayout() Layout {
	return Layout{
		CatalogFile: "songlist/Buckingham Conspiracy 3.0  SONG LIST/Buckingham Conspiracy 3.0  SONG LIST.md",
		SetlistsDir: "setlists",
		TabsDir:     "song_data/tabs",
		LyricsDir:   "song_data/lyrics",
	}
}

var fileNameCleaner = strings.NewReplacer("/", "-", "\\", "-")

// TabPath is where the fetched tab JSON for a song is stored.
func (l Layout) TabPath(name string) string {
	return path.Join(l.TabsDir, fileNameCleaner.Replace(name)+".json")
}

// LyricsPath is where the lyrics text for a song is stored.
func (l Layout) LyricsPath(name string) string {
	return path.Join(l.LyricsDir, fileNameCleaner.Replace(name)+".txt")
}

// SetlistPath returns "<dir>/<Venue> Setlist (<MMDDYY>)/<same>.md".
func (l Layout) SetlistPath(venue, date string) string {
	dir := parser.SetlistDirName(venue, date)
	return path.Join(l.SetlistsDir, dir, dir+".md")
}

// SetlistDirName returns the venue directory of a setlist file path and
// whether the path is a setlist file at all: a markdown file exactly one
// directory below SetlistsDir.
func (l Layout) SetlistDirName(p string) (string, bool) {
	p = path.Clean(p)
	rel, ok := strings.CutPrefix(p, path.Clean(l.SetlistsDir)+"/")
	if !ok || path.Ext(rel) != ".md" {
		return "", false
	}
	dir, file, ok := strings.Cut(rel, "/")
	if !ok || dir == "" || strings.Contains(file, "/") {
		return "", false
	}
	return dir, true
}
