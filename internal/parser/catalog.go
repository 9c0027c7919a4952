package parser

import (
	"bytes"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/starford/bandhub/internal/models"
)

// DefaultCatalogTitle is used when a catalog has no title heading.
const DefaultCatalogTitle = "Buckingham Conspiracy 3.0 : SONG LIST "

const (
	hardBreak     = "  "
	spacerLine    = "#   "
	artistSep     = " - "
	commentPrefix = "#"
)

var (
	// entryRe takes the last parenthesised integer on the line as the BPM.
	entryRe = regexp.MustCompile(`^(.+)\((\d+)\)`)
	titleRe = regexp.MustCompile(`^#\s*\*\*\*\*(.*?)\*\*\*\*$`)
)

// ParseCatalog reads a catalog file into entries keyed by song name.
// When a name occurs more than once the last line wins.
func ParseCatalog(data []byte) (*models.Catalog, *Report) {
	cat := models.NewCatalog("")
	rep := &Report{}

	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, commentPrefix) {
			if cat.Title == "" {
				if m := titleRe.FindStringSubmatch(line); m != nil {
					cat.Title = m[1]
				}
			}
			continue
		}

		entry, reason := parseCatalogLine(line)
		if reason != "" {
			rep.skip(i+1, line, reason)
			continue
		}
		if _, dup := cat.Entries[entry.Name]; dup {
			rep.Duplicates = append(rep.Duplicates, entry.Name)
		}
		cat.Entries[entry.Name] = entry
	}

	if cat.Title == "" {
		cat.Title = DefaultCatalogTitle
	}
	return cat, rep
}

func parseCatalogLine(line string) (models.CatalogEntry, string) {
	plain, spans := ParseMarkers(line)
	m := entryRe.FindStringSubmatch(plain)
	if m == nil {
		return models.CatalogEntry{}, "no name (bpm) pattern"
	}
	bpm, err := strconv.Atoi(m[2])
	if err != nil || bpm <= 0 {
		return models.CatalogEntry{}, "bpm is not a positive integer"
	}

	name := strings.TrimSpace(m[1])
	artist := ""
	if before, after, found := strings.Cut(name, artistSep); found {
		name, artist = strings.TrimSpace(before), strings.TrimSpace(after)
	}
	if name == "" {
		return models.CatalogEntry{}, "empty song name"
	}

	horn, vocals := DetectMarkers(line)
	return models.CatalogEntry{
		Name:        name,
		Artist:      artist,
		BPM:         bpm,
		Markers:     models.Markers{Horn: horn, Vocals: vocals},
		Annotations: spans,
		RawLine:     line,
	}, ""
}

// SerializeCatalog writes entries sorted by name between the fixed header
// and footer. Every line ends with a markdown hard break.
func SerializeCatalog(cat *models.Catalog) []byte {
	title := cat.Title
	if title == "" {
		title = DefaultCatalogTitle
	}

	var buf bytes.Buffer
	buf.WriteString("# ****" + title + "****" + hardBreak + "\n")
	buf.WriteString(hardBreak + "\n")
	buf.WriteString(spacerLine + "\n")

	for _, name := range slices.Sorted(maps.Keys(cat.Entries)) {
		buf.WriteString(FormatCatalogLine(cat.Entries[name]))
		buf.WriteString(hardBreak + "\n")
	}

	buf.WriteString(hardBreak + "\n")
	buf.WriteString(hardBreak + "\n")
	buf.WriteString(spacerLine + "\n")
	buf.WriteString(hardBreak + "\n")
	return buf.Bytes()
}

// FormatCatalogLine renders one entry without the trailing hard break.
func FormatCatalogLine(e models.CatalogEntry) string {
	return e.DisplayName() + EncodeMarkers(e.Markers.Horn, e.Markers.Vocals) + " (" + strconv.Itoa(e.BPM) + ")"
}
