package indexing

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// TaskMergeStorages consumes the two smallest queued IntermediateStorage
// values, merges them and pushes the result back, per spec.md §4.I. It
// fails when fewer than two storages are available, which is not an
// error condition — the TaskDrainLoop it's wrapped in reads that
// Failure as "idle" and re-enters it until the run is drained.
type TaskMergeStorages struct {
	provider *storage.StorageProvider
}

// NewTaskMergeStorages builds a merge task over provider.
func NewTaskMergeStorages(provider *storage.StorageProvider) *TaskMergeStorages {
	return &TaskMergeStorages{provider: provider}
}

func (t *TaskMergeStorages) Enter(bb *blackboard.Blackboard) {}

func (t *TaskMergeStorages) Update(bb *blackboard.Blackboard) types.TaskState {
	a, b, ok := t.provider.ConsumeTwoSmallest()
	if !ok {
		return types.StateFailure
	}
	t.provider.Push(a.MergeFrom(b))
	return types.StateSuccess
}

func (t *TaskMergeStorages) Exit(bb *blackboard.Blackboard)  {}
func (t *TaskMergeStorages) Reset(bb *blackboard.Blackboard) {}
