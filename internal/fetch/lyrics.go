package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/models"
	"github.com/starford/bandhub/internal/scrape"
)

var (
	// ErrNoMatch means the lyrics search returned nothing usable.
	ErrNoMatch = errors.New("fetch: no lyrics match")
	// ErrNoToken means the Genius token is missing.
	ErrNoToken = errors.New("fetch: set GENIUS_ACCESS_TOKEN or pass --token")
)

// LyricsSource searches for songs and downloads their lyrics.
// *scrape.Genius satisfies it.
type LyricsSource interface {
	Search(ctx context.Context, title, artist string) (*scrape.GeniusSong, error)
	FetchLyrics(ctx context.Context, songURL string) (string, error)
}

// LyricsJob fetches lyrics for every target song. A rejected token stops
// the run since no later song can succeed.
type LyricsJob struct {
	Library *library.Service
	Source  LyricsSource
	Options Options
	Logger  *slog.Logger
}

// Run processes the targets selected by j.Options.
func (j *LyricsJob) Run(ctx context.Context) (Summary, error) {
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cat, err := j.Library.LoadCatalog(ctx)
	if err != nil {
		return Summary{}, err
	}
	targets, err := Targets(j.Options, cat, func(name string) (bool, error) {
		return j.Library.HasLyrics(ctx, name)
	})
	if err != nil {
		return Summary{}, err
	}
	fatal := func(err error) bool { return errors.Is(err, scrape.ErrUnauthorized) }
	return run(ctx, logger, "lyrics", cat, targets, j.Options.Delay, j.fetchOne, fatal)
}

func (j *LyricsJob) fetchOne(ctx context.Context, e models.CatalogEntry) (string, error) {
	song, err := j.Source.Search(ctx, e.Name, e.Artist)
	if err != nil {
		return "", err
	}
	if song == nil {
		return "", ErrNoMatch
	}
	if song.URL == "" {
		return "", fmt.Errorf("%w: hit without a song URL", ErrNoMatch)
	}
	lyrics, err := j.Source.FetchLyrics(ctx, song.URL)
	if err != nil {
		return "", err
	}
	return j.Library.SaveLyrics(ctx, e.Name, lyrics)
}
