package indexing

import (
	"context"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/scheduling"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// TaskParseWrapper decorates child, flipping persistent storage into
// write mode on Enter and back to read mode (with caches rebuilt) on
// Exit, per spec.md §4.I. child is normally the Parallel fan-out of
// worker, merger and injector tasks.
type TaskParseWrapper struct {
	persistent storage.PersistentStorage
	child      scheduling.Task

	lastErr error
}

// NewTaskParseWrapper builds a wrapper around child.
func NewTaskParseWrapper(persistent storage.PersistentStorage, child scheduling.Task) *TaskParseWrapper {
	return &TaskParseWrapper{persistent: persistent, child: child}
}

func (t *TaskParseWrapper) Enter(bb *blackboard.Blackboard) {
	t.lastErr = nil
	if err := t.persistent.SetMode(context.Background(), storage.ModeWrite); err != nil {
		t.lastErr = err
	}
	t.child.Enter(bb)
}

func (t *TaskParseWrapper) Update(bb *blackboard.Blackboard) types.TaskState {
	state := t.child.Update(bb)
	if state != types.StateRunning {
		t.child.Exit(bb)
	}
	return state
}

func (t *TaskParseWrapper) Exit(bb *blackboard.Blackboard) {
	if err := t.persistent.SetMode(context.Background(), storage.ModeRead); err != nil {
		t.lastErr = err
		return
	}
	if err := t.persistent.BuildCaches(context.Background()); err != nil {
		t.lastErr = err
	}
}

// Err returns the storage error from the last mode transition or cache
// rebuild, if any.
func (t *TaskParseWrapper) Err() error { return t.lastErr }

func (t *TaskParseWrapper) Reset(bb *blackboard.Blackboard) {
	t.lastErr = nil
	t.child.Reset(bb)
}
