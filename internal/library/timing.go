package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/bandhub/internal/models"
)

// BaseDuration is the estimated length in seconds of a song at 120 BPM,
// and of any song whose BPM is unknown.
const BaseDuration = 210

// DefaultBreakMinutes is the default length of each set break.
const DefaultBreakMinutes = 15

// EstimateDuration scales BaseDuration to bpm. Tempos under 60 count as 60.
func EstimateDuration(bpm int) int {
	if bpm <= 0 {
		return BaseDuration
	}
	return BaseDuration * 120 / max(bpm, 60)
}

// FormatDuration renders seconds as MM:SS. Minutes are not wrapped at 60.
func FormatDuration(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Breaks are the two set breaks of a show, in minutes.
type Breaks struct {
	AfterSet1 int `json:"set1_break" yaml:"set1_break"`
	AfterSet2 int `json:"set2_break" yaml:"set2_break"`
}

// DefaultBreaks returns two breaks of DefaultBreakMinutes.
func DefaultBreaks() Breaks {
	return Breaks{AfterSet1: DefaultBreakMinutes, AfterSet2: DefaultBreakMinutes}
}

// SetTiming is the estimate for one set.
type SetTiming struct {
	Songs     int    `json:"songs"`
	Seconds   int    `json:"seconds"`
	Duration  string `json:"duration"`
	WithBreak string `json:"with_break"`
}

// Timing is the estimate for a whole show.
type Timing struct {
	Sets         [models.SetCount]SetTiming `json:"sets"`
	Breaks       Breaks                     `json:"breaks"`
	TotalSeconds int                        `json:"total_seconds"`
	Total        string                     `json:"total"`
}

// ComputeTiming estimates every set and the whole show. A song's BPM comes
// from its setlist line, then from the catalog (which may be nil); a song
// with neither counts BaseDuration.
func ComputeTiming(sl *models.Setlist, cat *models.Catalog, b Breaks) Timing {
	t := Timing{Breaks: b}
	breakSecs := [models.SetCount]int{b.AfterSet1 * 60, b.AfterSet2 * 60, 0}
	for i, songs := range sl.Sets {
		secs := 0
		for _, song := range songs {
			bpm := song.BPM
			if bpm <= 0 && cat != nil {
				bpm = cat.Entries[song.Name].BPM
			}
			secs += EstimateDuration(bpm)
		}
		t.Sets[i] = SetTiming{
			Songs:     len(songs),
			Seconds:   secs,
			Duration:  FormatDuration(secs),
			WithBreak: FormatDuration(secs + breakSecs[i]),
		}
		t.TotalSeconds += secs + breakSecs[i]
	}
	t.Total = FormatDuration(t.TotalSeconds)
	return t
}

// Timing estimates sl against the current catalog.
func (s *Service) Timing(ctx context.Context, sl *models.Setlist, b Breaks) Timing {
	return ComputeTiming(sl, s.catalogOrNil(ctx), b)
}

// ExportDocument is the downloadable JSON form of a setlist.
type ExportDocument struct {
	Venue   string       `json:"venue"`
	Date    string       `json:"date"`
	Setlist ExportSets   `json:"setlist"`
	Timing  ExportTiming `json:"timing"`
}

// ExportSets lists song names per set.
type ExportSets struct {
	Set1 []string `json:"set1"`
	Set2 []string `json:"set2"`
	Set3 []string `json:"set3"`
}

// ExportTiming carries the formatted set and show durations.
type ExportTiming struct {
	Set1  string `json:"set1_duration"`
	Set2  string `json:"set2_duration"`
	Set3  string `json:"set3_duration"`
	Total string `json:"total_show"`
}

// Export builds the export document for sl.
func (s *Service) Export(ctx context.Context, sl *models.Setlist, b Breaks) *ExportDocument {
	t := s.Timing(ctx, sl, b)
	names := func(songs []models.SetlistSong) []string {
		out := make([]string, len(songs))
		for i, song := range songs {
			out[i] = song.Name
		}
		return out
	}
	return &ExportDocument{
		Venue: sl.Venue,
		Date:  sl.Date,
		Setlist: ExportSets{
			Set1: names(sl.Sets[0]),
			Set2: names(sl.Sets[1]),
			Set3: names(sl.Sets[2]),
		},
		Timing: ExportTiming{
			Set1:  t.Sets[0].Duration,
			Set2:  t.Sets[1].Duration,
			Set3:  t.Sets[2].Duration,
			Total: t.Total,
		},
	}
}

// ExportFileName is the suggested download name, "setlist_<venue>_<MMDDYY>.json".
func ExportFileName(venue, date string) string {
	return "setlist_" + venue + "_" + strings.ReplaceAll(date, "/", "") + ".json"
}
