package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/bandhub/internal/httpx"
	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/scrape"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Data    DataConfig        `yaml:"data"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Scrape  ScrapeConfig      `yaml:"scrape"`
	Setlist SetlistConfig     `yaml:"setlist"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Scrape.Validate(); err != nil {
		return err
	}
	return c.Setlist.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig locates the band's files. Layout paths are relative to Root.
type DataConfig struct {
	Root           string `yaml:"root"`
	library.Layout `yaml:",inline"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.CatalogFile, validation.Required),
		validation.Field(&c.SetlistsDir, validation.Required),
		validation.Field(&c.TabsDir, validation.Required),
		validation.Field(&c.LyricsDir, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ScrapeConfig holds settings for the tab and lyrics fetchers.
type ScrapeConfig struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	// Retries after the first attempt; -1 disables retry.
	Retries       int           `yaml:"retries"`
	Delay         time.Duration `yaml:"delay"`
	UGBaseURL     string        `yaml:"ug_base_url"`
	GeniusAPIBase string        `yaml:"genius_api_base"`
	GeniusToken   string        `yaml:"genius_token"`
	Cache         CacheConfig   `yaml:"cache"`
}

// Validate validates the scrape configuration.
func (c *ScrapeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Min(0)),
		validation.Field(&c.Retries, validation.Min(-1), validation.Max(10)),
		validation.Field(&c.Delay, validation.Min(0)),
		validation.Field(&c.UGBaseURL, validation.Required),
		validation.Field(&c.GeniusAPIBase, validation.Required),
	)
}

// CacheConfig controls the search response cache. An empty Path disables it.
type CacheConfig struct {
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
}

// SetlistConfig holds show defaults.
type SetlistConfig struct {
	library.Breaks `yaml:",inline"`
}

// Validate validates the setlist configuration.
func (c *SetlistConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AfterSet1, validation.Min(0), validation.Max(60)),
		validation.Field(&c.AfterSet2, validation.Min(0), validation.Max(60)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Root:   "./data",
			Layout: library.DefaultLayout(),
		},
		SQLite: SQLiteConfig{
			Path: "./bandhub.db",
		},
		Scrape: ScrapeConfig{
			UserAgent:     httpx.DefaultUserAgent,
			Timeout:       httpx.DefaultTimeout,
			Retries:       httpx.DefaultRetries,
			Delay:         time.Second,
			UGBaseURL:     scrape.DefaultUGBaseURL,
			GeniusAPIBase: scrape.DefaultGeniusAPIBase,
			Cache: CacheConfig{
				Path: "./bandhub-cache.bolt",
				TTL:  24 * time.Hour,
			},
		},
		Setlist: SetlistConfig{
			Breaks: library.DefaultBreaks(),
		},
	}
}
