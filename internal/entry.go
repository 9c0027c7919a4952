// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/bandhub/internal/api"
	"github.com/starford/bandhub/internal/cache"
	"github.com/starford/bandhub/internal/fetch"
	"github.com/starford/bandhub/internal/httpx"
	"github.com/starford/bandhub/internal/index"
	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/matcher"
	"github.com/starford/bandhub/internal/mcpserver"
	"github.com/starford/bandhub/internal/scrape"
	"github.com/starford/bandhub/internal/sse"
	"github.com/starford/bandhub/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the structured JSON logger and makes it the default.
func (a *application) newLogger(w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openLibrary initializes storage over the data root and the library service.
func (a *application) openLibrary(logger *slog.Logger) (*storage.FS, *library.Service, error) {
	cfg := a.config

	// Ensure data directory exists.
	if err := os.MkdirAll(cfg.Data.Root, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Data.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	return store, library.NewService(store, cfg.Data.Layout, logger), nil
}

// openIndex opens the SQLite index and brings it up to date.
func (a *application) openIndex(store storage.Provider, logger *slog.Logger) (*index.DB, error) {
	db, err := index.Open(a.config.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	// Run initial sync.
	if _, err := index.Sync(db, store, a.config.Data.Layout, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return db, nil
}

// Run starts the HTTP API with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.newLogger(os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_root", cfg.Data.Root),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, svc, err := app.openLibrary(logger)
	if err != nil {
		return err
	}

	db, err := app.openIndex(store, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2*time.Second, 25*time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, db, broker, cfg.Setlist.Breaks)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := db.CatalogChecksum(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; every index change is pushed to SSE clients.
	g.Go(func() error {
		err := index.Watch(gCtx, db, store, cfg.Data.Layout, logger, broker.PublishChange)
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// ServeMCP serves the MCP tools on stdin/stdout. Logs go to stderr since
// stdout carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.newLogger(os.Stderr)

	store, svc, err := app.openLibrary(logger)
	if err != nil {
		return err
	}
	db, err := app.openIndex(store, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := index.Watch(watchCtx, db, store, app.config.Data.Layout, logger, nil); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc, db, app.config.Setlist.Breaks).ServeStdio()
}

// newScrapeClient builds the shared HTTP client and, when configured, the
// response cache. The returned close func is always safe to call.
func (a *application) newScrapeClient(logger *slog.Logger) (*http.Client, scrape.Cache, func()) {
	sc := a.config.Scrape
	client := httpx.NewClient(sc.UserAgent, sc.Timeout, sc.Retries)

	if sc.Cache.Path == "" {
		return client, nil, func() {}
	}
	store, err := cache.Open(sc.Cache.Path, sc.Cache.TTL)
	if err != nil {
		logger.Warn("fetch: cache disabled", slog.String("error", err.Error()))
		return client, nil, func() {}
	}
	if n, err := store.Purge(); err == nil && n > 0 {
		logger.Debug("fetch: purged expired cache entries", slog.Int("count", n))
	}
	return client, store, func() { _ = store.Close() }
}

func (a *application) fetchOptions() fetch.Options {
	o := a.fetch
	o.Delay = a.config.Scrape.Delay
	if a.delay != nil {
		o.Delay = *a.delay
	}
	return o
}

// FetchTabs downloads Ultimate Guitar tabs for the selected songs.
func FetchTabs(ctx context.Context, opts ...Option) (fetch.Summary, error) {
	app, err := newApplication(opts)
	if err != nil {
		return fetch.Summary{}, err
	}
	logger := app.newLogger(os.Stdout)

	_, svc, err := app.openLibrary(logger)
	if err != nil {
		return fetch.Summary{}, err
	}
	client, c, closeCache := app.newScrapeClient(logger)
	defer closeCache()

	job := &fetch.TabJob{
		Library:   svc,
		Source:    scrape.NewUltimateGuitar(client, app.config.Scrape.UGBaseURL, c),
		Match:     matcher.Options{},
		Prefer:    app.prefer,
		ManualURL: app.manualURL,
		Options:   app.fetchOptions(),
		Logger:    logger,
	}
	return job.Run(ctx)
}

// FetchLyrics downloads Genius lyrics for the selected songs.
func FetchLyrics(ctx context.Context, opts ...Option) (fetch.Summary, error) {
	app, err := newApplication(opts)
	if err != nil {
		return fetch.Summary{}, err
	}
	logger := app.newLogger(os.Stdout)

	token := app.token
	if token == "" {
		token = app.config.Scrape.GeniusToken
	}
	if token == "" {
		return fetch.Summary{}, fetch.ErrNoToken
	}

	_, svc, err := app.openLibrary(logger)
	if err != nil {
		return fetch.Summary{}, err
	}
	client, c, closeCache := app.newScrapeClient(logger)
	defer closeCache()

	job := &fetch.LyricsJob{
		Library: svc,
		Source:  scrape.NewGenius(client, app.config.Scrape.GeniusAPIBase, token, c),
		Options: app.fetchOptions(),
		Logger:  logger,
	}
	return job.Run(ctx)
}

// SetArtists fills missing catalog artists from the YAML artist map.
func SetArtists(ctx context.Context, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	logger := app.newLogger(os.Stdout)

	artists := map[string]string{}
	if app.artistFile != "" {
		f, err := os.Open(app.artistFile)
		if err != nil {
			return 0, fmt.Errorf("open artist map: %w", err)
		}
		defer f.Close()
		if artists, err = fetch.ReadArtistMap(f); err != nil {
			return 0, err
		}
	}

	_, svc, err := app.openLibrary(logger)
	if err != nil {
		return 0, err
	}
	return fetch.SetArtists(ctx, svc, artists, logger)
}
