package library

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/bandhub/internal/apperr"
	"github.com/starford/bandhub/internal/models"
	"github.com/starford/bandhub/internal/parser"
)

// DateLayout is the display form of a show date.
const DateLayout = "01/02/06"

// showDateRe accepts MM/DD/YY or a bare digit run, the two date forms a
// setlist directory name can round-trip.
var showDateRe = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2}|\d+)$`)

// trailingBPMRe matches a name that would read back as carrying a BPM.
var trailingBPMRe = regexp.MustCompile(`\(\d+\)$`)

// SetlistInput is the payload for creating or replacing a setlist.
type SetlistInput struct {
	Venue string                         `json:"venue"`
	Date  string                         `json:"date"`
	Sets  [models.SetCount][]SetlistSong `json:"sets"`
}

// SetlistSong is a requested song slot. BPM zero means "take it from the catalog".
type SetlistSong struct {
	Name string `json:"name"`
	BPM  int    `json:"bpm,omitempty"`
}

// Validate checks venue, date and song names. An empty date becomes today
// and a six digit date is rewritten as MM/DD/YY, the form it reads back as.
func (in *SetlistInput) Validate() error {
	in.Venue = strings.TrimSpace(in.Venue)
	in.Date = normalizeShowDate(strings.TrimSpace(in.Date))
	if in.Date == "" {
		in.Date = time.Now().Format(DateLayout)
	}
	return validation.ValidateStruct(in,
		validation.Field(&in.Venue, validation.Required, validation.By(venueSafe)),
		validation.Field(&in.Date, validation.Required, validation.By(showDate)),
		validation.Field(&in.Sets, validation.By(setSongsSafe)),
	)
}

func normalizeShowDate(d string) string {
	if len(d) == 6 && strings.Trim(d, "0123456789") == "" {
		return d[0:2] + "/" + d[2:4] + "/" + d[4:6]
	}
	return d
}

func showDate(value any) error {
	s, _ := value.(string)
	if !showDateRe.MatchString(s) {
		return errors.New("must be MM/DD/YY")
	}
	if strings.Contains(s, "/") {
		if _, err := time.Parse(DateLayout, s); err != nil {
			return errors.New("must be a valid MM/DD/YY date")
		}
	}
	return nil
}

func venueSafe(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "/\\\n") || strings.Contains(s, " Setlist (") {
		return errors.New("must not contain path separators or \" Setlist (\"")
	}
	return nil
}

func setSongsSafe(value any) error {
	sets, _ := value.([models.SetCount][]SetlistSong)
	for i, songs := range sets {
		for _, song := range songs {
			if err := setlistNameSafe(strings.TrimSpace(song.Name), song.BPM); err != nil {
				return fmt.Errorf("set %d: %q %w", i+1, song.Name, err)
			}
		}
	}
	return nil
}

// setlistNameSafe rejects names that a setlist file would not read back
// unchanged. Blank names are allowed; they are dropped when building.
func setlistNameSafe(name string, bpm int) error {
	switch {
	case name == "":
		return nil
	case strings.ContainsAny(name, "\r\n"):
		return errors.New("must not contain line breaks")
	case strings.ContainsAny(name, "#^") || strings.Contains(name, "****"):
		return errors.New("must not contain '#', '^' or '****'")
	case strings.Contains(name, parser.HornGlyph) || strings.Contains(name, parser.VocalsGlyph):
		return errors.New("must not contain marker glyphs")
	case strings.EqualFold(name, "empty"):
		return errors.New("must not be the placeholder \"empty\"")
	case bpm <= 0 && trailingBPMRe.MatchString(name):
		return errors.New("must not end with a parenthesised number")
	}
	for _, marker := range []string{"SET 1", "SET 2", "SET 3"} {
		if strings.Contains(name, marker) {
			return fmt.Errorf("must not contain %q", marker)
		}
	}
	return nil
}

// build turns the input into a setlist. Blank names and repeats within one
// set are dropped, and missing BPMs are filled from the catalog when known.
func (in SetlistInput) build(cat *models.Catalog) *models.Setlist {
	sl := &models.Setlist{Venue: in.Venue, Date: in.Date}
	for i, songs := range in.Sets {
		seen := make(map[string]struct{}, len(songs))
		for _, req := range songs {
			name := strings.TrimSpace(req.Name)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			bpm := req.BPM
			if bpm <= 0 && cat != nil {
				bpm = cat.Entries[name].BPM
			}
			sl.Sets[i] = append(sl.Sets[i], models.SetlistSong{Name: name, BPM: max(bpm, 0)})
		}
	}
	return sl
}

// ListSetlists parses every setlist in the archive, newest first. Dates are
// compared as display strings. A non-empty venue keeps only exact matches.
// Files that cannot be read are logged and skipped.
func (s *Service) ListSetlists(ctx context.Context, venue string) ([]models.Setlist, error) {
	files, err := s.store.List(s.layout.SetlistsDir, ".md")
	if err != nil {
		return nil, fmt.Errorf("library: list setlists: %w", err)
	}
	out := make([]models.Setlist, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := s.layout.SetlistDirName(f.Path); !ok {
			continue
		}
		sl, err := s.GetSetlist(ctx, f.Path)
		if err != nil {
			s.logger.Warn("library: unreadable setlist",
				slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if venue != "" && sl.Venue != venue {
			continue
		}
		out = append(out, *sl)
	}
	slices.SortStableFunc(out, func(a, b models.Setlist) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	return out, nil
}

// Venues returns the distinct venues in the archive, sorted.
func (s *Service) Venues(ctx context.Context) ([]string, error) {
	sls, err := s.ListSetlists(ctx, "")
	if err != nil {
		return nil, err
	}
	venues := make([]string, 0, len(sls))
	for _, sl := range sls {
		venues = append(venues, sl.Venue)
	}
	slices.Sort(venues)
	return slices.Compact(venues), nil
}

// GetSetlist reads and parses the setlist at p.
func (s *Service) GetSetlist(_ context.Context, p string) (*models.Setlist, error) {
	dir, ok := s.layout.SetlistDirName(p)
	if !ok {
		return nil, fmt.Errorf("%w: not a setlist path: %s", apperr.ErrInvalid, p)
	}
	data, err := s.store.Read(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("library: read setlist: %w", err)
	}
	sl, rep := parser.ParseSetlist(data, dir)
	s.logReport("setlist", p, rep)
	sl.Path = path.Clean(p)
	return sl, nil
}

// CreateSetlist writes a new setlist under its venue/date directory.
func (s *Service) CreateSetlist(ctx context.Context, in SetlistInput) (*models.Setlist, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	p := s.layout.SetlistPath(in.Venue, in.Date)
	exists, err := s.store.Exists(p)
	if err != nil {
		return nil, fmt.Errorf("library: create setlist: %w", err)
	}
	if exists {
		return nil, apperr.ErrAlreadyExists
	}
	sl := in.build(s.catalogOrNil(ctx))
	return sl, s.writeSetlist(p, sl)
}

// UpdateSetlist replaces the setlist at p. When venue or date change the
// file moves to the matching directory.
func (s *Service) UpdateSetlist(ctx context.Context, p string, in SetlistInput) (*models.Setlist, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	if _, err := s.GetSetlist(ctx, p); err != nil {
		return nil, err
	}
	p = path.Clean(p)
	target := s.layout.SetlistPath(in.Venue, in.Date)
	if target != p {
		exists, err := s.store.Exists(target)
		if err != nil {
			return nil, fmt.Errorf("library: update setlist: %w", err)
		}
		if exists {
			return nil, apperr.ErrAlreadyExists
		}
	}
	sl := in.build(s.catalogOrNil(ctx))
	if err := s.writeSetlist(target, sl); err != nil {
		return nil, err
	}
	if target != p {
		if err := s.store.Delete(p); err != nil {
			return nil, fmt.Errorf("library: remove moved setlist: %w", err)
		}
	}
	return sl, nil
}

// DeleteSetlist removes the setlist at p together with its emptied directory.
func (s *Service) DeleteSetlist(_ context.Context, p string) error {
	if _, ok := s.layout.SetlistDirName(p); !ok {
		return fmt.Errorf("%w: not a setlist path: %s", apperr.ErrInvalid, p)
	}
	if err := s.store.Delete(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("library: delete setlist: %w", err)
	}
	return nil
}

func (s *Service) writeSetlist(p string, sl *models.Setlist) error {
	if err := s.store.Write(p, parser.SerializeSetlist(sl)); err != nil {
		return fmt.Errorf("library: write setlist: %w", err)
	}
	sl.Path = p
	return nil
}

// catalogOrNil loads the catalog for BPM lookups; a missing or unreadable
// catalog only disables the lookup.
func (s *Service) catalogOrNil(ctx context.Context) *models.Catalog {
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		s.logger.Debug("library: catalog unavailable for bpm lookup", slog.String("error", err.Error()))
		return nil
	}
	return cat
}
