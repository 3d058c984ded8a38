package indexing

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/scheduling"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// drainConfirmations is how many consecutive polls must observe an
// empty CommandList and a zero indexer_count before TaskDrainLoop
// commits to Success. TaskBuildIndex increments indexer_count only
// after it has already popped its command, so a single poll can land
// in that narrow window between the pop and the increment; a short run
// of confirmations closes it without needing a second shared counter
// just to make the check atomic.
const drainConfirmations = 3

// errSource is satisfied by the pipeline tasks TaskDrainLoop wraps that
// can fail for a reason other than "nothing to do right now"
// (TaskBuildIndex's fatal-parser-error path, TaskInjectStorage's
// storage-write-error path). A Failure from a child that doesn't
// implement it is always treated as "idle, check whether the run is
// done" rather than a hard error — true of TaskMergeStorages, whose
// only Failure mode is "fewer than two storages queued".
type errSource interface {
	Err() error
}

// TaskDrainLoop re-enters child on every terminal state until cmds is
// empty, no worker has anything in flight, and (when provider is set)
// the shared StorageProvider has been fully drained — at which point it
// reports Success. It exists so TaskBuildIndex, TaskMergeStorages and
// TaskInjectStorage can keep their simple per-call Success/Failure
// contracts (exercised directly in their own tests) while still
// composing into a scheduling.Parallel branch that must settle on
// Success, never Failure, once a refresh is genuinely finished — a
// Parallel only succeeds if every branch does.
type TaskDrainLoop struct {
	child    scheduling.Task
	cmds     *CommandList
	provider *storage.StorageProvider

	confirmed int
}

// NewTaskDrainLoop wraps child, treating the run as finished once cmds
// is empty and indexer_count is zero.
func NewTaskDrainLoop(cmds *CommandList, child scheduling.Task) *TaskDrainLoop {
	return &TaskDrainLoop{cmds: cmds, child: child}
}

// NewTaskDrainLoopUntilEmpty wraps child like NewTaskDrainLoop, and
// additionally requires provider to be empty before reporting Success —
// the shape the injector branch needs so it never stops while a merged
// storage is still sitting unconsumed.
func NewTaskDrainLoopUntilEmpty(cmds *CommandList, provider *storage.StorageProvider, child scheduling.Task) *TaskDrainLoop {
	return &TaskDrainLoop{cmds: cmds, provider: provider, child: child}
}

func (t *TaskDrainLoop) Enter(bb *blackboard.Blackboard) {
	t.confirmed = 0
	t.child.Enter(bb)
}

func (t *TaskDrainLoop) Update(bb *blackboard.Blackboard) types.TaskState {
	state := t.child.Update(bb)
	if state == types.StateRunning {
		return types.StateRunning
	}
	t.child.Exit(bb)

	if state == types.StateCanceled || scheduling.Canceled(bb) {
		return types.StateCanceled
	}
	if state == types.StateFailure && t.isRealFailure() {
		return types.StateFailure
	}

	if t.drained(bb) {
		t.confirmed++
		if t.confirmed >= drainConfirmations {
			return types.StateSuccess
		}
	} else {
		t.confirmed = 0
	}

	t.child.Reset(bb)
	t.child.Enter(bb)
	return types.StateRunning
}

func (t *TaskDrainLoop) isRealFailure() bool {
	ec, ok := t.child.(errSource)
	if !ok {
		return false
	}
	return ec.Err() != nil
}

func (t *TaskDrainLoop) drained(bb *blackboard.Blackboard) bool {
	if t.cmds.Size() != 0 {
		return false
	}
	if blackboard.MustGet[int](bb, "indexer_count") != 0 {
		return false
	}
	if t.provider != nil && t.provider.Size() != 0 {
		return false
	}
	return true
}

func (t *TaskDrainLoop) Exit(bb *blackboard.Blackboard) {}

func (t *TaskDrainLoop) Reset(bb *blackboard.Blackboard) {
	t.confirmed = 0
	t.child.Reset(bb)
}
