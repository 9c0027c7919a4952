package parser

import "strings"

// Marker glyphs recognised on catalog lines.
const (
	HornGlyph   = "🎺"
	VocalsGlyph = "🥁"
)

// Canonical caret spans written by the serializer.
const (
	hornMarker   = "^" + HornGlyph + " ^"
	vocalsMarker = "^" + VocalsGlyph + "^"
)

// legacyFence is an older empty annotation wrapped in bold fences.
const legacyFence = "****^ ^****"

const caret = '^'

// ParseMarkers splits a line into its plain text and the caret-delimited
// annotation spans it carries. A span opens at '^' and closes at the next
// '^'; an unclosed '^' is kept as literal text. Span contents are returned
// without the delimiters.
func ParseMarkers(line string) (plain string, spans []string) {
	line = strings.ReplaceAll(line, legacyFence, "")

	var b strings.Builder
	rest := line
	for {
		open := strings.IndexByte(rest, caret)
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open+1:], caret)
		if end < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		spans = append(spans, rest[open+1:open+1+end])
		rest = rest[open+1+end+1:]
	}
	return b.String(), spans
}

// DetectMarkers reports the horn and vocal flags of a raw line. Detection is
// a substring search over the whole line, not just the caret spans, so a
// glyph anywhere on the line sets its flag.
func DetectMarkers(raw string) (horn, vocals bool) {
	return strings.Contains(raw, HornGlyph), strings.Contains(raw, VocalsGlyph)
}

// EncodeMarkers renders the flags back into caret spans, horn first.
func EncodeMarkers(horn, vocals bool) string {
	var b strings.Builder
	if horn {
		b.WriteString(hornMarker)
	}
	if vocals {
		b.WriteString(vocalsMarker)
	}
	return b.String()
}
