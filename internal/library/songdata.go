package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/starford/bandhub/internal/apperr"
	"github.com/starford/bandhub/internal/models"
)

// HasTab reports whether a tab is stored for the song.
func (s *Service) HasTab(_ context.Context, name string) (bool, error) {
	return s.store.Exists(s.layout.TabPath(name))
}

// HasLyrics reports whether lyrics are stored for the song.
func (s *Service) HasLyrics(_ context.Context, name string) (bool, error) {
	return s.store.Exists(s.layout.LyricsPath(name))
}

// ReadTab returns the stored tab payload for a song.
func (s *Service) ReadTab(_ context.Context, name string) (*models.TabPayload, error) {
	data, err := s.readSongData(s.layout.TabPath(name))
	if err != nil {
		return nil, err
	}
	var tab models.TabPayload
	if err := json.Unmarshal(data, &tab); err != nil {
		return nil, fmt.Errorf("library: decode tab %q: %w", name, err)
	}
	return &tab, nil
}

// SaveTab stores a tab payload as indented JSON.
func (s *Service) SaveTab(_ context.Context, name string, tab *models.TabPayload) (string, error) {
	data, err := json.MarshalIndent(tab, "", "  ")
	if err != nil {
		return "", fmt.Errorf("library: encode tab: %w", err)
	}
	p := s.layout.TabPath(name)
	if err := s.store.Write(p, data); err != nil {
		return "", fmt.Errorf("library: save tab: %w", err)
	}
	return p, nil
}

// ReadLyrics returns the stored lyrics without the trailing newline.
func (s *Service) ReadLyrics(_ context.Context, name string) (string, error) {
	data, err := s.readSongData(s.layout.LyricsPath(name))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// SaveLyrics stores lyrics text followed by a single newline.
func (s *Service) SaveLyrics(_ context.Context, name, lyrics string) (string, error) {
	lyrics = strings.TrimSpace(lyrics)
	if lyrics == "" {
		return "", fmt.Errorf("%w: empty lyrics", apperr.ErrInvalid)
	}
	p := s.layout.LyricsPath(name)
	if err := s.store.Write(p, []byte(lyrics+"\n")); err != nil {
		return "", fmt.Errorf("library: save lyrics: %w", err)
	}
	return p, nil
}

func (s *Service) readSongData(p string) ([]byte, error) {
	data, err := s.store.Read(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("library: read %s: %w", p, err)
	}
	return data, nil
}
