// Package parser reads and writes the catalog and setlist markdown formats.
package parser

// Skipped describes a line the parser ignored.
type Skipped struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Report collects the non-fatal findings of a parse. Malformed lines and
// duplicate names never fail a parse; callers decide whether to log them.
type Report struct {
	Skipped    []Skipped `json:"skipped,omitempty"`
	Duplicates []string  `json:"duplicates,omitempty"`
}

func (r *Report) skip(line int, text, reason string) {
	r.Skipped = append(r.Skipped, Skipped{Line: line, Text: text, Reason: reason})
}

// Clean reports whether the parse found nothing worth mentioning.
func (r *Report) Clean() bool {
	return len(r.Skipped) == 0 && len(r.Duplicates) == 0
}
