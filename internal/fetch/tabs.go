package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/matcher"
	"github.com/starford/bandhub/internal/models"
)

// ErrNoTab means no eligible tab was found for a song.
var ErrNoTab = errors.New("fetch: no tab found")

// TabSource searches for and downloads tabs. *scrape.UltimateGuitar
// satisfies it.
type TabSource interface {
	Search(ctx context.Context, query string) ([]models.MatchCandidate, error)
	FetchTab(ctx context.Context, tabURL string) (*models.TabPayload, error)
}

// TabJob fetches a tab for every target song and stores it as JSON.
type TabJob struct {
	Library *library.Service
	Source  TabSource
	Match   matcher.Options
	// Prefer is "chords", "tabs" or "any".
	Prefer string
	// ManualURL skips the search for every target.
	ManualURL string
	Options   Options
	Logger    *slog.Logger
}

// Run processes the targets selected by j.Options.
func (j *TabJob) Run(ctx context.Context) (Summary, error) {
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cat, err := j.Library.LoadCatalog(ctx)
	if err != nil {
		return Summary{}, err
	}
	targets, err := Targets(j.Options, cat, func(name string) (bool, error) {
		return j.Library.HasTab(ctx, name)
	})
	if err != nil {
		return Summary{}, err
	}
	return run(ctx, logger, "tabs", cat, targets, j.Options.Delay, j.fetchOne, nil)
}

// chooseURL returns the manual URL or the best eligible search result.
func (j *TabJob) chooseURL(ctx context.Context, e models.CatalogEntry) (string, error) {
	if j.ManualURL != "" {
		return j.ManualURL, nil
	}
	query := strings.TrimSpace(e.Name + " " + e.Artist)
	candidates, err := j.Source.Search(ctx, query)
	if err != nil {
		return "", err
	}
	q := models.MatchQuery{Title: e.Name, Artist: e.Artist, PreferType: matcher.PreferFragment(j.Prefer)}
	u, ok := j.Match.BestMatch(q, candidates)
	if !ok {
		return "", ErrNoTab
	}
	return u, nil
}

func (j *TabJob) fetchOne(ctx context.Context, e models.CatalogEntry) (string, error) {
	u, err := j.chooseURL(ctx, e)
	if err != nil {
		return "", err
	}
	tab, err := j.Source.FetchTab(ctx, u)
	if err != nil {
		return "", fmt.Errorf("fetch tab %s: %w", u, err)
	}
	return j.Library.SaveTab(ctx, e.Name, tab)
}
