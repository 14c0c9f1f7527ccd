// Package storage defines the read-only content directory abstraction.
package storage

import "time"

// File describes one file under the content root.
type File struct {
	// Path is slash-separated and relative to the content root.
	Path     string
	Checksum string
	Size     int64
	ModTime  time.Time
}

// Provider is the interface for content file access.
type Provider interface {
	// List returns every file under dir (relative to the content root)
	// whose name ends with one of exts. With no exts every file is listed.
	List(dir string, exts ...string) ([]File, error)
	// Read returns the raw bytes of the file at path (relative to the content root).
	Read(path string) ([]byte, error)
	// Root returns the absolute content directory.
	Root() string
}
