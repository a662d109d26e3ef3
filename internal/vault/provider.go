// Package vault stores Markdown files under a single root directory, for
// exports and the import inbox.
package vault

import "time"

// Entry describes one Markdown file in the vault.
type Entry struct {
	Path     string    `json:"path"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}

// Provider is the interface for vault file operations. Paths are relative
// to the vault root and use forward slashes.
type Provider interface {
	List(dir string) ([]Entry, error)
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
	Delete(path string) error
	Move(oldPath, newPath string) error
}
