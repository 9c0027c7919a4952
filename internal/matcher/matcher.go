// Package matcher ranks external tab search results against a catalog song.
package matcher

import (
	"cmp"
	"slices"
	"strings"

	"github.com/starford/bandhub/internal/models"
)

// DefaultURLPrefix is the only tab location candidates may point at.
const DefaultURLPrefix = "https://tabs.ultimate-guitar.com/tab/"

// PreferredTypes earn a small bonus when the caller's own preference does not match.
var PreferredTypes = []string{"Official", "Chords", "Tabs", "Bass Tabs", "Ukulele Chords"}

// Score weights.
const (
	voteDivisor    = 100.0
	voteBonusCap   = 5.0
	titleExact     = 5.0
	titlePartial   = 2.0
	artistExact    = 4.0
	artistPartial  = 1.5
	preferredBonus = 2.0
	fallbackBonus  = 1.0
)

// Options configures candidate filtering.
type Options struct {
	URLPrefix string
}

// Scored pairs a candidate with its score and original position.
type Scored struct {
	Candidate models.MatchCandidate `json:"candidate"`
	Score     float64               `json:"score"`
	Index     int                   `json:"index"`
}

// Normalize lowercases s and drops everything that is not an ASCII letter or digit.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PreferFragment maps a CLI preference ("chords", "tabs", "any") to the
// type fragment used for scoring. "any" means no preference.
func PreferFragment(prefer string) string {
	p := strings.ToLower(strings.TrimSpace(prefer))
	if p == "any" {
		return ""
	}
	return p
}

// Eligible reports whether a candidate survives filtering. Filtered
// candidates are never scored.
func (o Options) Eligible(c models.MatchCandidate) bool {
	prefix := o.URLPrefix
	if prefix == "" {
		prefix = DefaultURLPrefix
	}
	return c.AccessType == models.AccessPublic && strings.HasPrefix(c.URL, prefix)
}

// Score computes the additive heuristic for one candidate.
func Score(c models.MatchCandidate, q models.MatchQuery) float64 {
	score := max(c.Rating, 0)
	score += min(float64(max(c.Votes, 0))/voteDivisor, voteBonusCap)

	title, artist := Normalize(q.Title), Normalize(q.Artist)
	candTitle, candArtist := Normalize(c.Title), Normalize(c.ArtistName)

	switch {
	case title != "" && title == candTitle:
		score += titleExact
	case title != "" && strings.Contains(candTitle, title):
		score += titlePartial
	}

	switch {
	case artist != "" && artist == candArtist:
		score += artistExact
	case artist != "" && strings.Contains(candArtist, artist):
		score += artistPartial
	}

	typeLabel := strings.ToLower(c.TypeLabel)
	prefer := strings.ToLower(q.PreferType)
	switch {
	case prefer != "" && strings.Contains(typeLabel, prefer):
		score += preferredBonus
	case slices.ContainsFunc(PreferredTypes, func(t string) bool {
		return strings.Contains(typeLabel, strings.ToLower(t))
	}):
		score += fallbackBonus
	}
	return score
}

// Rank filters and scores candidates, highest first. Equal scores keep
// their original order.
func (o Options) Rank(q models.MatchQuery, candidates []models.MatchCandidate) []Scored {
	out := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		if !o.Eligible(c) {
			continue
		}
		out = append(out, Scored{Candidate: c, Score: Score(c, q), Index: i})
	}
	slices.SortStableFunc(out, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// BestMatch returns the URL of the highest ranked candidate, or false when
// nothing survives filtering.
func (o Options) BestMatch(q models.MatchQuery, candidates []models.MatchCandidate) (string, bool) {
	ranked := o.Rank(q, candidates)
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0].Candidate.URL, true
}

// BestMatch ranks with the default options.
func BestMatch(q models.MatchQuery, candidates []models.MatchCandidate) (string, bool) {
	return Options{}.BestMatch(q, candidates)
}

// Rank ranks with the default options.
func Rank(q models.MatchQuery, candidates []models.MatchCandidate) []Scored {
	return Options{}.Rank(q, candidates)
}
