package storage

import (
	"context"
	"time"

	"github.com/nullptr-dev/trailindex/pkg/types"
)

// Mode is the current access mode of a PersistentStorage, per spec.md
// §3: a storage is in exactly one of Empty, Read, Write, Incompatible.
type Mode int

const (
	ModeEmpty Mode = iota
	ModeRead
	ModeWrite
	ModeIncompatible
)

// CurrentSchemaVersion is bumped whenever the persistent schema changes
// in a way that makes an older database Incompatible.
const CurrentSchemaVersion = "1"

// PersistentStorage is the durable append target described in spec.md
// §3-4.E/§6. Only one task at a time may hold write access; during a
// refresh the Read/Write transitions are performed by the TaskParseWrapper
// pipeline task (internal/indexing). Outside it, the project controller's
// Load enters ModeRead and Clear returns the storage to ModeEmpty.
type PersistentStorage interface {
	Mode() Mode
	IsEmpty() bool
	IsIncompatible() bool
	SetMode(ctx context.Context, mode Mode) error
	BuildCaches(ctx context.Context) error

	GetInfoOnAllFiles(ctx context.Context) ([]types.FileInfo, error)
	GetReferencing(ctx context.Context, paths []types.FilePath) ([]types.FilePath, error)
	GetReferenced(ctx context.Context, paths []types.FilePath) ([]types.FilePath, error)

	GetProjectSettingsText(ctx context.Context) (string, error)
	SetProjectSettingsText(ctx context.Context, text string) error

	Clear(ctx context.Context) error
	Inject(ctx context.Context, storage *IntermediateStorage) error
	CleanFiles(ctx context.Context, paths []types.FilePath) error

	Close() error
}

// FileInfoRecord is the persisted counterpart of types.FileInfo, kept
// distinct so storage code never has to fake a types.FileInfo for rows
// the filesystem hasn't confirmed exist.
type FileInfoRecord struct {
	Path          types.FilePath
	LastWriteTime time.Time
}
