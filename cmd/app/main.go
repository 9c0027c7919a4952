package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/bandhub/internal"
	"github.com/starford/bandhub/internal/fetch"
	pkgconfig "github.com/starford/bandhub/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("data-dir"); root != "" {
		cfg.Data.Root = root
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func fetchOptions(cmd *cli.Command) fetch.Options {
	return fetch.Options{
		Song:       cmd.String("song"),
		AllMissing: cmd.Bool("all-missing"),
		Overwrite:  cmd.Bool("overwrite"),
		Limit:      int(cmd.Int("limit")),
	}
}

// fetchFlags turns the shared fetch flags into options. --delay only
// overrides the config when given, so --delay 0s turns the wait off.
func fetchFlags(cmd *cli.Command) []internal.Option {
	opts := []internal.Option{internal.WithFetchOptions(fetchOptions(cmd))}
	if cmd.IsSet("delay") {
		opts = append(opts, internal.WithDelay(cmd.Duration("delay")))
	}
	return opts
}

func printSummary(sum fetch.Summary) {
	fmt.Printf("Done. %d of %d songs populated.\n", sum.Succeeded, sum.Attempted)
}

func fetchTabs(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := append(fetchFlags(cmd),
		internal.WithConfig(cfg),
		internal.WithPrefer(cmd.String("prefer")),
		internal.WithManualURL(cmd.String("manual-url")),
	)
	sum, err := internal.FetchTabs(ctx, opts...)
	if err != nil {
		return err
	}
	printSummary(sum)
	return nil
}

func fetchLyrics(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := append(fetchFlags(cmd),
		internal.WithConfig(cfg),
		internal.WithGeniusToken(cmd.String("token")),
	)
	sum, err := internal.FetchLyrics(ctx, opts...)
	if err != nil {
		return err
	}
	printSummary(sum)
	return nil
}

func setArtists(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := internal.SetArtists(ctx,
		internal.WithConfig(cfg),
		internal.WithArtistFile(cmd.String("artists")),
	)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %d songs with artist information.\n", n)
	return nil
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "song", Usage: "Exact song name from the catalog"},
		&cli.BoolFlag{Name: "all-missing", Usage: "Process every song without stored data"},
		&cli.IntFlag{Name: "limit", Usage: "Maximum number of songs with --all-missing"},
		&cli.BoolFlag{Name: "overwrite", Usage: "Replace data that already exists"},
		&cli.DurationFlag{Name: "delay", Usage: "Wait between songs (default from config)"},
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "bandhub",
		Usage:  "Song catalog, setlist archive and show timing for a live band, backed by Markdown files",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Data root (overrides data.root)",
				Sources: cli.EnvVars("BCH_DATA_DIR", "DATA_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and live events",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: serveMCP,
			},
			{
				Name:   "fetch-tabs",
				Usage:  "Fetch Ultimate Guitar tabs for catalog songs",
				Action: fetchTabs,
				Flags: append(selectionFlags(),
					&cli.StringFlag{Name: "prefer", Value: "chords", Usage: "Tab type preference: chords, tabs or any"},
					&cli.StringFlag{Name: "manual-url", Usage: "Use this tab URL instead of searching"},
				),
			},
			{
				Name:   "fetch-lyrics",
				Usage:  "Fetch Genius lyrics for catalog songs",
				Action: fetchLyrics,
				Flags: append(selectionFlags(),
					&cli.StringFlag{
						Name:    "token",
						Usage:   "Genius API access token",
						Sources: cli.EnvVars("GENIUS_ACCESS_TOKEN"),
					},
				),
			},
			{
				Name:   "set-artists",
				Usage:  "Fill missing catalog artists from a YAML map",
				Action: setArtists,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "artists", Usage: "YAML file mapping song name to artist"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
