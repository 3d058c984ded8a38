package indexing

import (
	"context"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/events"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// TaskFinishParsing rebuilds caches, publishes the finished storage
// through the access proxy, and emits FinishedParsing, per spec.md
// §4.I. It runs once at the tail of the refresh root, after the drain
// loop has injected every remaining queued storage.
type TaskFinishParsing struct {
	persistent storage.PersistentStorage
	proxy      *storage.AccessProxy
	sink       events.Sink

	lastErr error
}

// NewTaskFinishParsing builds the task. sink may be events.NopSink{}.
func NewTaskFinishParsing(persistent storage.PersistentStorage, proxy *storage.AccessProxy, sink events.Sink) *TaskFinishParsing {
	return &TaskFinishParsing{persistent: persistent, proxy: proxy, sink: sink}
}

func (t *TaskFinishParsing) Enter(bb *blackboard.Blackboard) {
	t.lastErr = nil
}

func (t *TaskFinishParsing) Update(bb *blackboard.Blackboard) types.TaskState {
	if err := t.persistent.BuildCaches(context.Background()); err != nil {
		t.lastErr = err
		return types.StateFailure
	}
	t.proxy.SetSubject(t.persistent)
	t.sink.FinishedParsing()
	return types.StateSuccess
}

// Err returns the cache-rebuild error from the last Failure, if any.
func (t *TaskFinishParsing) Err() error { return t.lastErr }

func (t *TaskFinishParsing) Exit(bb *blackboard.Blackboard) {}

func (t *TaskFinishParsing) Reset(bb *blackboard.Blackboard) {
	t.lastErr = nil
}
