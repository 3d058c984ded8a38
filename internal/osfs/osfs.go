// Package osfs backs types.FileSystem with the real filesystem, the
// production implementation the doc comment on types.FileSystem calls
// for. It is a thin os/filepath wrapper with no third-party surface to
// exercise, so it stays on the standard library.
package osfs

import (
	"os"
	"time"
)

// FS implements types.FileSystem over os and os.MkdirAll.
type FS struct{}

// New returns a production FS.
func New() FS { return FS{} }

func (FS) Stat(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (FS) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (FS) Remove(path string) error {
	return os.Remove(path)
}
