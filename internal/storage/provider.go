// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for vault file operations. All paths are
// relative to the vault root and use forward slashes.
type Provider interface {
	// List walks dir (relative to vault root) and returns metadata for
	// every regular file, notes and attachments alike.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath. It refuses to overwrite an existing
	// file at newPath.
	Move(oldPath, newPath string) error
	// Copy duplicates oldPath to newPath. It refuses to overwrite an
	// existing file at newPath.
	Copy(oldPath, newPath string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// PruneEmptyDirs removes the directory containing path and any empty
	// ancestors, stopping at (and never removing) the vault root.
	PruneEmptyDirs(path string) error
}
