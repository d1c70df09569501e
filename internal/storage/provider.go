// Package storage defines the source-tree file-system abstraction.
//
// The extractor core only ever consumes a raw string; this package is the
// acquisition collaborator that locates and reads source files, surfacing
// I/O failures as explicit errors before any text reaches the scanner.
package storage

import "github.com/starford/perthro/internal/models"

// Provider is the read-only interface for source file access.
type Provider interface {
	// List returns metadata for every matching file under dir (relative
	// to the source root), filtered by the configured extensions.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the
	// source root).
	Read(path string) ([]byte, error)
	// Matches reports whether path carries one of the configured
	// extensions.
	Matches(path string) bool
}
