// Package library implements the band's catalog and setlist operations on
// top of the flat-file store. Nothing is cached between calls: every
// operation loads the files it needs and writes them back explicitly.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/starford/bandhub/internal/apperr"
	"github.com/starford/bandhub/internal/models"
	"github.com/starford/bandhub/internal/parser"
	"github.com/starford/bandhub/internal/storage"
)

// Service coordinates catalog and setlist reads and writes.
type Service struct {
	store  storage.Provider
	layout Layout
	logger *slog.Logger
}

// NewService creates a new library service. A nil logger falls back to slog.Default.
func NewService(store storage.Provider, layout Layout, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, layout: layout, logger: logger}
}

// Layout returns the data layout the service was built with.
func (s *Service) Layout() Layout { return s.layout }

// Store returns the underlying file store.
func (s *Service) Store() storage.Provider { return s.store }

// LoadCatalog reads and parses the catalog file. A missing file is reported
// as apperr.ErrNotFound.
func (s *Service) LoadCatalog(_ context.Context) (*models.Catalog, error) {
	data, err := s.store.Read(s.layout.CatalogFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("library: catalog %s: %w", s.layout.CatalogFile, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("library: read catalog: %w", err)
	}
	cat, rep := parser.ParseCatalog(data)
	s.logReport("catalog", s.layout.CatalogFile, rep)
	return cat, nil
}

// SaveCatalog serializes the catalog and atomically replaces the file.
func (s *Service) SaveCatalog(_ context.Context, cat *models.Catalog) error {
	if err := s.store.Write(s.layout.CatalogFile, parser.SerializeCatalog(cat)); err != nil {
		return fmt.Errorf("library: save catalog: %w", err)
	}
	return nil
}

func (s *Service) logReport(kind, path string, rep *parser.Report) {
	for _, sk := range rep.Skipped {
		s.logger.Debug("library: skipped line",
			slog.String("kind", kind),
			slog.String("path", path),
			slog.Int("line", sk.Line),
			slog.String("reason", sk.Reason))
	}
	for _, name := range rep.Duplicates {
		s.logger.Warn("library: duplicate song",
			slog.String("kind", kind),
			slog.String("path", path),
			slog.String("name", name))
	}
}
