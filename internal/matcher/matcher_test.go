package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/bandhub/internal/models"
)

func cocaineCandidates() []models.MatchCandidate {
	return []models.MatchCandidate{
		{
			Title: "Cocaine", ArtistName: "JJ Cale", Rating: 4.8, Votes: 900,
			AccessType: "public", URL: "https://tabs.ultimate-guitar.com/tab/x", TypeLabel: "Chords",
		},
		{
			Title: "Cocaine (live)", ArtistName: "Eric Clapton", Rating: 4.9, Votes: 2000,
			AccessType: "public", URL: "https://tabs.ultimate-guitar.com/tab/y", TypeLabel: "Tabs",
		},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Don't Stop", "dontstop"},
		{"Dont Stop", "dontstop"},
		{"  JJ Cale ", "jjcale"},
		{"Booker T. & the M.G.'s", "bookertthemgs"},
		{"Café 1612", "caf1612"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestPreferFragment(t *testing.T) {
	assert.Equal(t, "chords", PreferFragment("Chords"))
	assert.Equal(t, "", PreferFragment("any"))
	assert.Equal(t, "", PreferFragment(""))
}

func TestScore_Terms(t *testing.T) {
	q := models.MatchQuery{Title: "Cocaine", Artist: "JJ Cale", PreferType: "chords"}
	c := cocaineCandidates()

	assert.InDelta(t, 4.8+5+5+4+2, Score(c[0], q), 1e-9)
	assert.InDelta(t, 4.9+5+2+0+1, Score(c[1], q), 1e-9)
}

func TestScore_VoteBonusScalesBelowCap(t *testing.T) {
	c := models.MatchCandidate{Votes: 250}
	assert.InDelta(t, 2.5, Score(c, models.MatchQuery{}), 1e-9)
}

func TestScore_EmptyQueryFieldsEarnNothing(t *testing.T) {
	c := models.MatchCandidate{Title: "Anything", ArtistName: "Anyone"}
	assert.Zero(t, Score(c, models.MatchQuery{}))
}

func TestScore_ArtistSubstring(t *testing.T) {
	c := models.MatchCandidate{ArtistName: "The Black Crowes"}
	assert.InDelta(t, 1.5, Score(c, models.MatchQuery{Artist: "Black Crowes"}), 1e-9)
}

func TestScore_PreferenceListFallback(t *testing.T) {
	c := models.MatchCandidate{TypeLabel: "Ukulele Chords"}
	assert.InDelta(t, 1.0, Score(c, models.MatchQuery{PreferType: "tabs"}), 1e-9)
	assert.InDelta(t, 2.0, Score(c, models.MatchQuery{PreferType: "ukulele"}), 1e-9)
	assert.Zero(t, Score(models.MatchCandidate{TypeLabel: "Video"}, models.MatchQuery{}))
}

func TestBestMatch_ExactTitleAndArtistWins(t *testing.T) {
	q := models.MatchQuery{Title: "Cocaine", Artist: "JJ Cale", PreferType: "chords"}
	url, ok := BestMatch(q, cocaineCandidates())
	require.True(t, ok)
	assert.Equal(t, "https://tabs.ultimate-guitar.com/tab/x", url)
}

func TestBestMatch_PrivateNeverReturned(t *testing.T) {
	q := models.MatchQuery{Title: "Cocaine", Artist: "JJ Cale", PreferType: "chords"}
	cands := cocaineCandidates()
	cands[0].Rating = 5
	cands[0].AccessType = "private"

	url, ok := BestMatch(q, cands)
	require.True(t, ok)
	assert.Equal(t, "https://tabs.ultimate-guitar.com/tab/y", url)

	cands[1].AccessType = "private"
	_, ok = BestMatch(q, cands)
	assert.False(t, ok)
}

func TestBestMatch_WrongHostExcluded(t *testing.T) {
	cands := []models.MatchCandidate{
		{Title: "Time", AccessType: "public", URL: "https://www.ultimate-guitar.com/pro/time", Rating: 5},
		{Title: "Time", AccessType: "public", URL: "https://tabs.ultimate-guitar.com/tab/time", Rating: 1},
	}
	url, ok := BestMatch(models.MatchQuery{Title: "Time"}, cands)
	require.True(t, ok)
	assert.Equal(t, "https://tabs.ultimate-guitar.com/tab/time", url)
}

func TestBestMatch_Empty(t *testing.T) {
	url, ok := BestMatch(models.MatchQuery{Title: "x"}, nil)
	assert.False(t, ok)
	assert.Empty(t, url)
}

func TestRank_TiesKeepFirstSeen(t *testing.T) {
	cands := []models.MatchCandidate{
		{Title: "Deal", AccessType: "public", URL: DefaultURLPrefix + "a"},
		{Title: "Deal", AccessType: "public", URL: DefaultURLPrefix + "b"},
		{Title: "Other", AccessType: "private", URL: DefaultURLPrefix + "c"},
		{Title: "Deal", AccessType: "public", URL: DefaultURLPrefix + "d"},
	}
	q := models.MatchQuery{Title: "Deal"}

	ranked := Options{}.Rank(q, cands)
	require.Len(t, ranked, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{ranked[0].Index, ranked[1].Index, ranked[2].Index})

	for i := 0; i < 20; i++ {
		url, _ := BestMatch(q, cands)
		assert.Equal(t, DefaultURLPrefix+"a", url)
	}
}

func TestOptions_CustomPrefix(t *testing.T) {
	o := Options{URLPrefix: "http://127.0.0.1/tab/"}
	c := models.MatchCandidate{AccessType: "public", URL: "http://127.0.0.1/tab/1"}
	assert.True(t, o.Eligible(c))
	assert.False(t, Options{}.Eligible(c))
}
