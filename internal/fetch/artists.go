package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/starford/bandhub/internal/library"
)

// ReadArtistMap decodes a YAML mapping of song name to artist.
func ReadArtistMap(r io.Reader) (map[string]string, error) {
	m := map[string]string{}
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && err != io.EOF {
		return nil, fmt.Errorf("fetch: decode artist map: %w", err)
	}
	return m, nil
}

// SetArtists fills missing catalog artists from the map, falling back to
// library.DefaultArtist, and logs how many songs changed.
func SetArtists(ctx context.Context, svc *library.Service, artists map[string]string, logger *slog.Logger) (int, error) {
	n, err := svc.SetArtists(ctx, artists, library.DefaultArtist)
	if err != nil {
		return 0, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("fetch: artists updated", slog.Int("changed", n), slog.Int("known", len(artists)))
	return n, nil
}
