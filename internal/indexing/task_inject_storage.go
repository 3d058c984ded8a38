package indexing

import (
	"context"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// TaskInjectStorage consumes the smallest queued IntermediateStorage and
// commits it to persistent storage, per spec.md §4.I. Like
// TaskMergeStorages, it fails (not errors) when the queue is empty, so a
// wrapping TaskDrainLoop treats it as idle and a wrapping Selector can
// fall through to its next child.
type TaskInjectStorage struct {
	provider   *storage.StorageProvider
	persistent storage.PersistentStorage

	lastErr error
}

// NewTaskInjectStorage builds an inject task draining provider into
// persistent.
func NewTaskInjectStorage(provider *storage.StorageProvider, persistent storage.PersistentStorage) *TaskInjectStorage {
	return &TaskInjectStorage{provider: provider, persistent: persistent}
}

func (t *TaskInjectStorage) Enter(bb *blackboard.Blackboard) {
	t.lastErr = nil
}

func (t *TaskInjectStorage) Update(bb *blackboard.Blackboard) types.TaskState {
	is, ok := t.provider.ConsumeSmallest()
	if !ok {
		return types.StateFailure
	}
	if err := t.persistent.Inject(context.Background(), is); err != nil {
		t.lastErr = err
		return types.StateFailure
	}
	return types.StateSuccess
}

// Err returns the storage error from the last Failure caused by a
// write failure rather than an empty queue.
func (t *TaskInjectStorage) Err() error { return t.lastErr }

func (t *TaskInjectStorage) Exit(bb *blackboard.Blackboard) {}

func (t *TaskInjectStorage) Reset(bb *blackboard.Blackboard) {
	t.lastErr = nil
}
