package api

import (
	"github.com/starford/bandhub/internal/index"
	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/models"
)

// SongRequest is the request body for creating or updating a song.
type SongRequest = library.SongInput

// Song is a catalog song in API responses (aliased from the domain layer).
type Song = library.Song

// SongListResponse wraps song listings.
type SongListResponse struct {
	Songs []Song `json:"songs" validate:"required"`
	Total int    `json:"total" example:"57" validate:"required"`
}

// PlaysResponse lists the archived appearances of one song.
type PlaysResponse struct {
	Name  string       `json:"name" example:"Cocaine" validate:"required"`
	Count int          `json:"count" example:"3" validate:"required"`
	Plays []index.Play `json:"plays" validate:"required"`
}

// UnplayedResponse lists catalog songs absent from every archived setlist.
type UnplayedResponse struct {
	Songs []string `json:"songs" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SongHit `json:"results" validate:"required"`
}

// LyricsBody is the JSON form of stored lyrics.
type LyricsBody struct {
	Name   string `json:"name,omitempty" example:"Deal"`
	Lyrics string `json:"lyrics" validate:"required"`
}

// SetlistRequest is the request body for creating or replacing a setlist.
type SetlistRequest = library.SetlistInput

// SetlistItem is a setlist plus the id used in /setlists/{id} URLs.
type SetlistItem struct {
	ID string `json:"id" example:"The Cat's Cradle Setlist (030725)/The Cat's Cradle Setlist (030725).md"`
	*models.Setlist
}

// SetlistListResponse wraps setlist listings.
type SetlistListResponse struct {
	Setlists []SetlistItem `json:"setlists" validate:"required"`
	Total    int           `json:"total" example:"12" validate:"required"`
}

// SetlistDetail is a setlist with its show timing.
type SetlistDetail struct {
	SetlistItem
	Timing library.Timing `json:"timing"`
}

// VenuesResponse lists archived venues.
type VenuesResponse struct {
	Venues []string `json:"venues" validate:"required"`
}

// MatchRequest asks the scorer to pick a tab among candidates.
type MatchRequest struct {
	Title      string                  `json:"title" example:"Cocaine" validate:"required"`
	Artist     string                  `json:"artist" example:"JJ Cale"`
	Prefer     string                  `json:"prefer" example:"chords"`
	Candidates []models.MatchCandidate `json:"candidates" validate:"required"`
}

// RankedCandidate is one eligible candidate with its score.
type RankedCandidate struct {
	models.MatchCandidate
	Score float64 `json:"score" example:"20.8"`
}

// MatchResponse carries the chosen URL (if any) and the full ranking.
type MatchResponse struct {
	URL    string            `json:"url,omitempty" example:"https://tabs.ultimate-guitar.com/tab/x"`
	Found  bool              `json:"found"`
	Ranked []RankedCandidate `json:"ranked" validate:"required"`
}
