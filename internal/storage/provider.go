// Package storage defines the reminder file-system abstraction.
package storage

import "github.com/starford/dosebell/internal/models"

// Provider is the interface for reading reminder files.
type Provider interface {
	// Root returns the absolute directory the provider reads from.
	Root() string
	// List returns metadata for every .json file directly under the root,
	// in directory listing order.
	List() ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at name (relative to root).
	Read(name string) ([]byte, error)
}
