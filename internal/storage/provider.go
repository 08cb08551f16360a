// Package storage defines the mirror vault file-system abstraction.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Entry describes one Markdown file in the vault.
type Entry struct {
	Path     string
	Checksum string
	ModTime  time.Time
}

// Provider is the interface for vault file operations.
type Provider interface {
	// List returns every .md file under dir (relative to vault root).
	List(dir string) ([]Entry, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to vault root).
	Delete(path string) error
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
