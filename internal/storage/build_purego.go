//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package storage

// This file is compiled when building without CGO, or without the
// sqlite_vec tag — the default.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite, a pure Go SQLite implementation. No C
// compiler required, suitable for development and cross-compilation.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver registered with database/sql.
	DriverName = "sqlite"
	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
