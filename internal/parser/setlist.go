package parser

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/bandhub/internal/models"
)

// UnknownDate is the date reported when a directory name does not follow
// the "<Venue> Setlist (<date>)" convention.
const UnknownDate = "Unknown"

// Legend lines written under every setlist heading.
const (
	LegendSitIn = "# - Travis sit-in"
	LegendHorn  = HornGlyph + " - Horn"
)

var (
	setlistDirRe = regexp.MustCompile(`(.+?) Setlist \((\d+)\)`)
	songLineRe   = regexp.MustCompile(`^(.+?)\s*(?:\((\d+)\))?$`)
	boldSpanRe   = regexp.MustCompile(`\*\*\*\*.*?\*\*\*\*`)
	glyphCleaner = strings.NewReplacer(HornGlyph, "", VocalsGlyph, "", "#", "")

	sectionMarkers = [models.SetCount]string{"SET 1", "SET 2", "SET 3"}
	sectionHeaders = [models.SetCount]string{"# ****—SET 1****", "# ****—-SET 2****", "# ****—-SET 3****"}
)

// ParseSetlistDir extracts venue and date from a setlist directory name.
// A six digit date is reformatted to MM/DD/YY; any other digit run is passed
// through as is. Only when the whole pattern fails does the date become
// UnknownDate and the venue the full directory name.
func ParseSetlistDir(dirName string) (venue, date string) {
	m := setlistDirRe.FindStringSubmatch(dirName)
	if m == nil {
		return dirName, UnknownDate
	}
	venue, date = m[1], m[2]
	if len(date) == 6 {
		date = date[:2] + "/" + date[2:4] + "/" + date[4:]
	}
	return venue, date
}

// SetlistDirName is the inverse of ParseSetlistDir for a display date.
func SetlistDirName(venue, date string) string {
	return venue + " Setlist (" + strings.ReplaceAll(date, "/", "") + ")"
}

// ParseSetlist reads a setlist file. Venue and date come from dirName.
// Within one set a repeated song name is dropped (first wins); the same
// name in different sets is kept in each.
func ParseSetlist(data []byte, dirName string) (*models.Setlist, *Report) {
	sl := &models.Setlist{}
	sl.Venue, sl.Date = ParseSetlistDir(dirName)
	rep := &Report{}

	current := -1
	seen := [models.SetCount]map[string]struct{}{}
	for i := range seen {
		seen[i] = make(map[string]struct{})
	}

	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if idx := sectionIndex(line); idx >= 0 {
			current = idx
			continue
		}
		if current < 0 || line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		song, ok := parseSetlistLine(line)
		if !ok {
			rep.skip(i+1, line, "no song name")
			continue
		}
		if _, dup := seen[current][song.Name]; dup {
			rep.Duplicates = append(rep.Duplicates, song.Name)
			continue
		}
		seen[current][song.Name] = struct{}{}
		sl.Sets[current] = append(sl.Sets[current], song)
	}
	return sl, rep
}

func sectionIndex(line string) int {
	for i, marker := range sectionMarkers {
		if strings.Contains(line, marker) {
			return i
		}
	}
	return -1
}

func parseSetlistLine(line string) (models.SetlistSong, bool) {
	m := songLineRe.FindStringSubmatch(line)
	if m == nil {
		return models.SetlistSong{}, false
	}
	name := boldSpanRe.ReplaceAllString(m[1], "")
	name, _ = ParseMarkers(name)
	name = strings.TrimSpace(glyphCleaner.Replace(name))
	if name == "" || strings.EqualFold(name, "empty") {
		return models.SetlistSong{}, false
	}

	song := models.SetlistSong{Name: name, RawLine: line}
	if m[2] != "" {
		if bpm, err := strconv.Atoi(m[2]); err == nil {
			song.BPM = bpm
		}
	}
	return song, true
}

// SerializeSetlist writes the fixed heading and legend followed by the three
// sets in order, with a spacer line between consecutive sets.
func SerializeSetlist(sl *models.Setlist) []byte {
	var buf bytes.Buffer
	buf.WriteString("# ****" + sl.Venue + " Setlist (" + sl.Date + ")****" + hardBreak + "\n")
	buf.WriteString(hardBreak + "\n")
	buf.WriteString(LegendSitIn + hardBreak + "\n")
	buf.WriteString(LegendHorn + hardBreak + "\n")
	buf.WriteString(hardBreak + "\n")

	for i, header := range sectionHeaders {
		if i > 0 {
			buf.WriteString(spacerLine + "\n")
		}
		buf.WriteString(header + hardBreak + "\n")
		for _, song := range sl.Sets[i] {
			buf.WriteString(FormatSetlistLine(song) + hardBreak + "\n")
		}
	}
	return buf.Bytes()
}

// FormatSetlistLine renders "name (bpm)" or the bare name when BPM is unset.
func FormatSetlistLine(s models.SetlistSong) string {
	if s.BPM > 0 {
		return s.Name + " (" + strconv.Itoa(s.BPM) + ")"
	}
	return s.Name
}
