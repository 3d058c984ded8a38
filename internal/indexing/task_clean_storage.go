package indexing

import (
	"context"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/scheduling"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// cleanChunkSize bounds how many files CleanStorage deletes per Update
// call, so a large filesToClean set still yields Running between
// chunks instead of holding the write transaction open for the whole
// batch in one suspension-free call.
const cleanChunkSize = 64

// TaskCleanStorage batch-deletes the symbols and edges whose source is
// in paths, one chunk per Update call (spec.md §4.I). It holds no long-lived transaction across Update calls: each
// chunk is its own transactional CleanFiles call, so a cancellation
// between chunks leaves the storage consistent rather than rolled back
// entirely.
type TaskCleanStorage struct {
	persistent storage.PersistentStorage
	paths      []types.FilePath

	offset int
	failed error
}

// NewTaskCleanStorage builds a clean task over paths.
func NewTaskCleanStorage(persistent storage.PersistentStorage, paths []types.FilePath) *TaskCleanStorage {
	return &TaskCleanStorage{persistent: persistent, paths: paths}
}

func (t *TaskCleanStorage) Enter(bb *blackboard.Blackboard) {
	t.offset = 0
	t.failed = nil
}

func (t *TaskCleanStorage) Update(bb *blackboard.Blackboard) types.TaskState {
	if scheduling.Canceled(bb) {
		return types.StateCanceled
	}
	if t.offset >= len(t.paths) {
		return types.StateSuccess
	}

	end := t.offset + cleanChunkSize
	if end > len(t.paths) {
		end = len(t.paths)
	}
	chunk := t.paths[t.offset:end]

	if err := t.persistent.CleanFiles(context.Background(), chunk); err != nil {
		t.failed = err
		return types.StateFailure
	}

	t.offset = end
	if t.offset >= len(t.paths) {
		return types.StateSuccess
	}
	return types.StateRunning
}

// Err returns the storage error that caused the last Failure, if any.
func (t *TaskCleanStorage) Err() error { return t.failed }

func (t *TaskCleanStorage) Exit(bb *blackboard.Blackboard) {}

func (t *TaskCleanStorage) Reset(bb *blackboard.Blackboard) {
	t.offset = 0
	t.failed = nil
}
