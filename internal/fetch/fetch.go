// Package fetch runs the batch jobs that populate song data for catalog
// songs: guitar tabs from Ultimate Guitar and lyrics from Genius.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/starford/bandhub/internal/models"
)

var (
	// ErrNoSelection means neither a song nor --all-missing was given.
	ErrNoSelection = errors.New("fetch: use --song or --all-missing to select songs")
	// ErrUnknownSong means the requested song is not in the catalog.
	ErrUnknownSong = errors.New("fetch: song not in catalog")
)

// Options selects which songs a job works on.
type Options struct {
	Song       string
	AllMissing bool
	Overwrite  bool
	// Limit caps the number of targets with AllMissing; zero means no cap.
	Limit int
	// Delay is waited between songs.
	Delay time.Duration
}

// Summary reports how a run went.
type Summary struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

// Targets lists the songs to process in name order. exists reports whether
// the song already has the data the job produces.
func Targets(opts Options, cat *models.Catalog, exists func(name string) (bool, error)) ([]string, error) {
	if opts.Song != "" {
		if _, ok := cat.Entries[opts.Song]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSong, opts.Song)
		}
		return []string{opts.Song}, nil
	}
	if !opts.AllMissing {
		return nil, ErrNoSelection
	}

	names := make([]string, 0, len(cat.Entries))
	for name := range cat.Entries {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []string
	for _, name := range names {
		if !opts.Overwrite {
			ok, err := exists(name)
			if err != nil {
				return nil, fmt.Errorf("fetch: check %q: %w", name, err)
			}
			if ok {
				continue
			}
		}
		out = append(out, name)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// itemFunc processes one song; a returned error is logged and skipped
// unless it is fatal.
type itemFunc func(ctx context.Context, e models.CatalogEntry) (string, error)

// run walks the targets in order, waiting delay between songs. fatal
// decides which item errors stop the whole run.
func run(ctx context.Context, logger *slog.Logger, job string, cat *models.Catalog, targets []string,
	delay time.Duration, item itemFunc, fatal func(error) bool,
) (Summary, error) {
	var sum Summary
	if len(targets) == 0 {
		logger.Info("fetch: no songs matched the requested criteria", slog.String("job", job))
		return sum, nil
	}

	for i, name := range targets {
		if i > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return sum, ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		e := cat.Entries[name]
		artist := e.Artist
		if artist == "" {
			artist = "Unknown artist"
		}
		logger.Info("fetch: fetching",
			slog.String("job", job),
			slog.String("song", name),
			slog.String("artist", artist),
			slog.Int("index", i+1),
			slog.Int("total", len(targets)),
		)

		sum.Attempted++
		saved, err := item(ctx, e)
		if err != nil {
			if fatal != nil && fatal(err) {
				return sum, err
			}
			logger.Warn("fetch: song failed",
				slog.String("job", job),
				slog.String("song", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		sum.Succeeded++
		logger.Info("fetch: saved", slog.String("job", job), slog.String("song", name), slog.String("path", saved))
	}

	logger.Info("fetch: done",
		slog.String("job", job),
		slog.Int("succeeded", sum.Succeeded),
		slog.Int("attempted", sum.Attempted),
	)
	return sum, nil
}
