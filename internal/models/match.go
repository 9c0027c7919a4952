package models

import "time"

// Tab access types reported by Ultimate Guitar.
const (
	AccessPublic  = "public"
	AccessPrivate = "private"
)

// MatchCandidate is one external search result considered for tab fetching.
type MatchCandidate struct {
	Title      string  `json:"title"`
	ArtistName string  `json:"artist_name"`
	URL        string  `json:"url"`
	Rating     float64 `json:"rating"`
	Votes      int     `json:"votes"`
	AccessType string  `json:"access_type"`
	TypeLabel  string  `json:"type"`
}

// MatchQuery is what the caller is looking for. PreferType is a lowercase
// fragment such as "chords"; empty means no preference.
type MatchQuery struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	PreferType string `json:"prefer_type,omitempty"`
}

// TabPayload is the JSON document stored for a fetched tab.
type TabPayload struct {
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	Rating    float64   `json:"rating"`
	Votes     int       `json:"votes"`
	Tuning    string    `json:"tuning,omitempty"`
	Capo      int       `json:"capo,omitempty"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}
