package indexing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

func driveDrainLoop(t *testing.T, bb *blackboard.Blackboard, task *TaskDrainLoop, maxTicks int) types.TaskState {
	t.Helper()
	task.Enter(bb)
	for i := 0; i < maxTicks; i++ {
		state := task.Update(bb)
		if state != types.StateRunning {
			return state
		}
	}
	t.Fatalf("drain loop did not reach a terminal state within %d ticks", maxTicks)
	return types.StateRunning
}

func TestTaskDrainLoop_WorkerSucceedsOnceQueueAndIndexerCountAreZero(t *testing.T) {
	bb := newRunBlackboard()
	cmds := NewCommandList()
	cmds.Push(types.NewIndexerCommand(types.NewFilePath("a.cpp"), "cpp", nil))
	provider := storage.NewStorageProvider()
	fileReg := NewFileRegister()
	worker := NewTaskBuildIndex(cmds, provider, fileReg, &fakeParser{})

	task := NewTaskDrainLoop(cmds, worker)
	state := driveDrainLoop(t, bb, task, drainConfirmations+5)

	assert.Equal(t, types.StateSuccess, state)
	assert.Equal(t, 1, provider.Size())
}

func TestTaskDrainLoop_WorkerFatalErrorPropagatesImmediately(t *testing.T) {
	bb := newRunBlackboard()
	cmds := NewCommandList()
	cmds.Push(types.NewIndexerCommand(types.NewFilePath("a.cpp"), "cpp", nil).WithCancelOnFatalErrors(true))
	provider := storage.NewStorageProvider()
	fileReg := NewFileRegister()
	worker := NewTaskBuildIndex(cmds, provider, fileReg, &fakeParser{err: assertErr})

	task := NewTaskDrainLoop(cmds, worker)
	task.Enter(bb)
	state := task.Update(bb)

	assert.Equal(t, types.StateFailure, state)
}

func TestTaskDrainLoop_MergeNeverReportsHardFailure(t *testing.T) {
	bb := newRunBlackboard()
	cmds := NewCommandList() // already empty: nothing to merge, nothing coming
	provider := storage.NewStorageProvider()
	task := NewTaskDrainLoop(cmds, NewTaskMergeStorages(provider))

	state := driveDrainLoop(t, bb, task, drainConfirmations+5)
	assert.Equal(t, types.StateSuccess, state)
}

func TestTaskDrainLoop_InjectorWaitsForProviderToEmptyBeforeSucceeding(t *testing.T) {
	bb := newRunBlackboard()
	cmds := NewCommandList()
	provider := storage.NewStorageProvider()
	provider.Push(storageWithRecordCount(1))
	persistent := &fakePersistentStorage{}

	task := NewTaskDrainLoopUntilEmpty(cmds, provider, NewTaskInjectStorage(provider, persistent))
	state := driveDrainLoop(t, bb, task, drainConfirmations+5)

	assert.Equal(t, types.StateSuccess, state)
	assert.Equal(t, 0, provider.Size())
	assert.Len(t, persistent.injected, 1)
}

func TestTaskDrainLoop_InjectorRealStorageErrorPropagatesImmediately(t *testing.T) {
	bb := newRunBlackboard()
	cmds := NewCommandList()
	provider := storage.NewStorageProvider()
	provider.Push(storageWithRecordCount(1))
	persistent := &fakePersistentStorage{injectErr: assertErr}

	task := NewTaskDrainLoopUntilEmpty(cmds, provider, NewTaskInjectStorage(provider, persistent))
	task.Enter(bb)
	state := task.Update(bb)

	assert.Equal(t, types.StateFailure, state)
}

func TestTaskDrainLoop_CanceledPropagatesImmediately(t *testing.T) {
	bb := newRunBlackboard()
	blackboard.Set(bb, "canceled", true)
	cmds := NewCommandList()
	cmds.Push(types.NewIndexerCommand(types.NewFilePath("a.cpp"), "cpp", nil))
	provider := storage.NewStorageProvider()
	worker := NewTaskBuildIndex(cmds, provider, NewFileRegister(), &fakeParser{})

	task := NewTaskDrainLoop(cmds, worker)
	task.Enter(bb)
	state := task.Update(bb)

	assert.Equal(t, types.StateCanceled, state)
}

func TestTaskDrainLoop_MergeStopsOnCancelEvenWithCommandsStillQueued(t *testing.T) {
	bb := newRunBlackboard()
	cmds := NewCommandList()
	// Commands remain unpopped, the scenario where a worker stops on its
	// own Canceled check without draining the rest of the queue, so
	// drained(bb) never becomes true on its own.
	cmds.Push(types.NewIndexerCommand(types.NewFilePath("a.cpp"), "cpp", nil))
	provider := storage.NewStorageProvider()
	task := NewTaskDrainLoop(cmds, NewTaskMergeStorages(provider))

	blackboard.Set(bb, "canceled", true)
	task.Enter(bb)
	state := task.Update(bb)

	assert.Equal(t, types.StateCanceled, state)
}

func TestTaskDrainLoop_InjectorStopsOnCancelWithProviderStillFull(t *testing.T) {
	bb := newRunBlackboard()
	cmds := NewCommandList()
	provider := storage.NewStorageProvider()
	provider.Push(storageWithRecordCount(1))
	persistent := &fakePersistentStorage{}
	task := NewTaskDrainLoopUntilEmpty(cmds, provider, NewTaskInjectStorage(provider, persistent))

	blackboard.Set(bb, "canceled", true)
	task.Enter(bb)
	state := task.Update(bb)

	assert.Equal(t, types.StateCanceled, state)
}
