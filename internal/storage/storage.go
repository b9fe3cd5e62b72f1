// Package storage is the file collaborator of the /files routes: read, write
// and delete whole files by name.
package storage

import (
	"errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("storage: file not found")
	ErrInvalidName = errors.New("storage: invalid file name")
)

// Store is safe for concurrent use. Concurrent writes to the same name leave
// one of the written contents in place, never a mix.
type Store interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	Delete(name string) error
}

// ValidName reports whether name is a single path element that can't escape
// the store: no separators, no dot segments, no NUL.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
