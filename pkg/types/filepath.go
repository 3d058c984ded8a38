package types

import (
	"path/filepath"
	"time"

	"golang.org/x/text/unicode/norm"
)

// FilePath is a canonical path string. Equality is case-sensitive, matching
// the semantics of a case-sensitive filesystem; callers that need
// case-insensitive comparison must fold case themselves before wrapping a
// path in a FilePath.
type FilePath struct {
	raw string
}

// NewFilePath builds a FilePath from a raw string, NFC-normalizing it so
// that two Unicode-equivalent but byte-distinct paths compare equal.
func NewFilePath(raw string) FilePath {
	return FilePath{raw: norm.NFC.String(filepath.Clean(raw))}
}

// String returns the canonical path string.
func (p FilePath) String() string {
	return p.raw
}

// IsEmpty reports whether the path carries no content.
func (p FilePath) IsEmpty() bool {
	return p.raw == ""
}

// Extension returns the file extension including the leading dot, or "" if
// the path has none.
func (p FilePath) Extension() string {
	return filepath.Ext(p.raw)
}

// Exists reports whether the path currently exists on disk.
func (p FilePath) Exists(fs FileSystem) bool {
	_, err := fs.Stat(p.raw)
	return err == nil
}

// Less provides a total order over FilePath so it can key sorted
// containers (e.g. for deterministic test output); it has no semantic
// meaning beyond byte comparison of the canonical string.
func (p FilePath) Less(other FilePath) bool {
	return p.raw < other.raw
}

// FileInfo is an immutable snapshot of a file's identity on disk.
type FileInfo struct {
	Path          FilePath
	LastWriteTime time.Time
}

// FileSystem is the minimal filesystem surface the engine consumes, per
// spec.md §6. Production code backs it with os/filepath; tests back it
// with an in-memory fake.
type FileSystem interface {
	Stat(path string) (ModTime time.Time, err error)
	CreateDirectory(path string) error
	Remove(path string) error
}
