// Package models defines the domain types for bandhub.
package models

import "time"

// Markers are the per-song attributes encoded as caret spans on a catalog line.
type Markers struct {
	Horn   bool `json:"has_horn"`
	Vocals bool `json:"has_vocals"`
}

// CatalogEntry is one song of the catalog, keyed by Name.
type CatalogEntry struct {
	Name        string   `json:"name"`
	Artist      string   `json:"artist,omitempty"`
	BPM         int      `json:"bpm"`
	Markers     Markers  `json:"markers"`
	Annotations []string `json:"annotations,omitempty"`
	RawLine     string   `json:"raw_line,omitempty"`
}

// DisplayName returns "Name - Artist", or just Name when the artist is unknown.
func (e CatalogEntry) DisplayName() string {
	if e.Artist == "" {
		return e.Name
	}
	return e.Name + " - " + e.Artist
}

// Catalog is the flat song list stored as one markdown file.
type Catalog struct {
	Title   string                  `json:"title"`
	Entries map[string]CatalogEntry `json:"entries"`
}

// NewCatalog returns an empty catalog with the given title.
func NewCatalog(title string) *Catalog {
	return &Catalog{Title: title, Entries: make(map[string]CatalogEntry)}
}

// SetlistSong is one line of a setlist section. BPM is zero when the line carries none.
type SetlistSong struct {
	Name    string `json:"name"`
	BPM     int    `json:"bpm,omitempty"`
	RawLine string `json:"raw_line,omitempty"`
}

// SetCount is the fixed number of performance sets in a setlist.
const SetCount = 3

// Setlist is a venue/date-scoped assignment of songs into three sets.
type Setlist struct {
	Venue string                  `json:"venue"`
	Date  string                  `json:"date"`
	Sets  [SetCount][]SetlistSong `json:"sets"`
	Path  string                  `json:"path,omitempty"`
}

// SongCount returns the number of songs across all sets.
func (s *Setlist) SongCount() int {
	n := 0
	for _, set := range s.Sets {
		n += len(set)
	}
	return n
}

// FileMetadata is a lightweight representation returned by storage list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
