package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/bandhub/internal/apperr"
	"github.com/starford/bandhub/internal/models"
	"github.com/starford/bandhub/internal/parser"
)

// BPM bounds accepted by the song editor. Parsing accepts any positive value.
const (
	MinBPM = 60
	MaxBPM = 200
)

// Song kinds accepted by ListSongs.
const (
	KindAll    = "all"
	KindHorn   = "horn"
	KindVocals = "vocals"
)

// Song is a catalog entry enriched with derived fields.
type Song struct {
	models.CatalogEntry
	DurationSeconds int    `json:"duration_seconds"`
	Duration        string `json:"duration"`
	HasTab          bool   `json:"has_tab"`
	HasLyrics       bool   `json:"has_lyrics"`
}

// SongFilter narrows ListSongs. Query is a case-insensitive name substring.
type SongFilter struct {
	Query string
	Kind  string
}

// SongInput is the editable part of a catalog entry.
type SongInput struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	BPM    int    `json:"bpm"`
	Horn   bool   `json:"has_horn"`
	Vocals bool   `json:"has_vocals"`
}

// Validate checks the input against what the catalog line format can hold.
func (in *SongInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Artist = strings.TrimSpace(in.Artist)
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.By(lineSafe)),
		validation.Field(&in.Artist, validation.By(lineSafe)),
		validation.Field(&in.BPM, validation.Required, validation.Min(MinBPM), validation.Max(MaxBPM)),
	)
}

var parenNumberRe = regexp.MustCompile(`\(\d+\)`)

// lineSafe rejects text that would not survive a catalog round trip.
func lineSafe(value any) error {
	s, _ := value.(string)
	switch {
	case strings.Contains(s, " - "):
		return errors.New("must not contain \" - \"")
	case strings.ContainsAny(s, "^\n"):
		return errors.New("must not contain '^' or line breaks")
	case strings.Contains(s, parser.HornGlyph) || strings.Contains(s, parser.VocalsGlyph):
		return errors.New("must not contain marker glyphs")
	case parenNumberRe.MatchString(s):
		return errors.New("must not contain a parenthesised number")
	case strings.HasPrefix(s, "#"):
		return errors.New("must not start with '#'")
	}
	return nil
}

func (in SongInput) entry() models.CatalogEntry {
	return models.CatalogEntry{
		Name:    in.Name,
		Artist:  in.Artist,
		BPM:     in.BPM,
		Markers: models.Markers{Horn: in.Horn, Vocals: in.Vocals},
	}
}

func (s *Service) song(e models.CatalogEntry) Song {
	d := EstimateDuration(e.BPM)
	song := Song{CatalogEntry: e, DurationSeconds: d, Duration: FormatDuration(d)}
	song.HasTab, _ = s.store.Exists(s.layout.TabPath(e.Name))
	song.HasLyrics, _ = s.store.Exists(s.layout.LyricsPath(e.Name))
	return song
}

// ListSongs returns the catalog songs matching f, sorted by name.
func (s *Service) ListSongs(ctx context.Context, f SongFilter) ([]Song, error) {
	switch f.Kind {
	case "", KindAll, KindHorn, KindVocals:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", apperr.ErrInvalid, f.Kind)
	}
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(f.Query)
	out := make([]Song, 0, len(cat.Entries))
	for _, name := range sortedNames(cat) {
		e := cat.Entries[name]
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		if (f.Kind == KindHorn && !e.Markers.Horn) || (f.Kind == KindVocals && !e.Markers.Vocals) {
			continue
		}
		out = append(out, s.song(e))
	}
	return out, nil
}

// GetSong returns one song by exact name.
func (s *Service) GetSong(ctx context.Context, name string) (*Song, error) {
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := cat.Entries[name]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	song := s.song(e)
	return &song, nil
}

// AddSong appends a new song to the catalog.
func (s *Service) AddSong(ctx context.Context, in SongInput) (*Song, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := cat.Entries[in.Name]; ok {
		return nil, apperr.ErrAlreadyExists
	}
	e := in.entry()
	cat.Entries[e.Name] = e
	if err := s.SaveCatalog(ctx, cat); err != nil {
		return nil, err
	}
	song := s.song(e)
	return &song, nil
}

// UpdateSong replaces the song named oldName. A rename drops the old key and
// carries any stored tab and lyrics along with it.
func (s *Service) UpdateSong(ctx context.Context, oldName string, in SongInput) (*Song, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := cat.Entries[oldName]; !ok {
		return nil, apperr.ErrNotFound
	}
	renamed := in.Name != oldName
	if renamed {
		if _, taken := cat.Entries[in.Name]; taken {
			return nil, apperr.ErrAlreadyExists
		}
		delete(cat.Entries, oldName)
	}
	e := in.entry()
	cat.Entries[e.Name] = e
	if err := s.SaveCatalog(ctx, cat); err != nil {
		return nil, err
	}
	if renamed {
		s.moveSongData(s.layout.TabPath(oldName), s.layout.TabPath(e.Name))
		s.moveSongData(s.layout.LyricsPath(oldName), s.layout.LyricsPath(e.Name))
	}
	song := s.song(e)
	return &song, nil
}

func (s *Service) moveSongData(from, to string) {
	ok, err := s.store.Exists(from)
	if err != nil || !ok {
		return
	}
	if taken, _ := s.store.Exists(to); taken {
		s.logger.Warn("library: not moving song data over existing file",
			slog.String("from", from), slog.String("to", to))
		return
	}
	if err := s.store.Move(from, to); err != nil {
		s.logger.Warn("library: move song data failed",
			slog.String("from", from), slog.String("error", err.Error()))
	}
}

// DeleteSong removes a song from the catalog. Stored tab and lyrics stay.
func (s *Service) DeleteSong(ctx context.Context, name string) error {
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	if _, ok := cat.Entries[name]; !ok {
		return apperr.ErrNotFound
	}
	delete(cat.Entries, name)
	return s.SaveCatalog(ctx, cat)
}

// Stats summarizes the catalog.
type Stats struct {
	Total      int     `json:"total"`
	Horn       int     `json:"horn"`
	Vocals     int     `json:"vocals"`
	AverageBPM float64 `json:"average_bpm"`
}

// Stats computes catalog totals. AverageBPM is zero for an empty catalog.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{Total: len(cat.Entries)}
	sum := 0
	for _, e := range cat.Entries {
		sum += e.BPM
		if e.Markers.Horn {
			st.Horn++
		}
		if e.Markers.Vocals {
			st.Vocals++
		}
	}
	if st.Total > 0 {
		st.AverageBPM = float64(sum) / float64(st.Total)
	}
	return st, nil
}

// DefaultArtist is written for songs absent from the artist map.
const DefaultArtist = "Unknown Artist"

// SetArtists fills the artist of every song that has none, looking it up in
// artists and falling back to fallback. Songs that already name an artist
// are left alone. It returns the number of songs changed.
func (s *Service) SetArtists(ctx context.Context, artists map[string]string, fallback string) (int, error) {
	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for name, e := range cat.Entries {
		if e.Artist != "" {
			continue
		}
		artist := strings.TrimSpace(artists[name])
		if artist == "" {
			artist = fallback
		}
		if artist == "" || lineSafe(artist) != nil {
			continue
		}
		e.Artist = artist
		cat.Entries[name] = e
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	if err := s.SaveCatalog(ctx, cat); err != nil {
		return 0, err
	}
	return changed, nil
}

func sortedNames(cat *models.Catalog) []string {
	names := make([]string, 0, len(cat.Entries))
	for name := range cat.Entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
