// Package storage defines the flat-file abstraction over the band data directory.
package storage

import "github.com/starford/bandhub/internal/models"

// Provider is the interface for data-root file operations. All paths are
// relative to the data root and use forward slashes.
type Provider interface {
	// List returns metadata for every file with the given extension under dir.
	// A missing dir yields an empty list.
	List(dir, ext string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Write atomically replaces the file at path, creating parent dirs.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Root returns the absolute data root.
	Root() string
}
