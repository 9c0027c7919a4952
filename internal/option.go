package internal

import (
	"time"

	"github.com/starford/bandhub/internal/fetch"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config

	fetch      fetch.Options
	delay      *time.Duration
	prefer     string
	manualURL  string
	token      string
	artistFile string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFetchOptions selects the songs a fetch command works on.
func WithFetchOptions(o fetch.Options) Option {
	return func(a *application) {
		a.fetch = o
	}
}

// WithDelay overrides the configured wait between songs. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(a *application) {
		a.delay = &d
	}
}

// WithPrefer sets the tab type preference ("chords", "tabs", "any").
func WithPrefer(prefer string) Option {
	return func(a *application) {
		a.prefer = prefer
	}
}

// WithManualURL makes the tab fetcher skip the search.
func WithManualURL(u string) Option {
	return func(a *application) {
		a.manualURL = u
	}
}

// WithGeniusToken overrides the configured Genius token.
func WithGeniusToken(token string) Option {
	return func(a *application) {
		a.token = token
	}
}

// WithArtistFile sets the YAML artist map used by SetArtists.
func WithArtistFile(path string) Option {
	return func(a *application) {
		a.artistFile = path
	}
}
