package indexing

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/events"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// TaskClearErrorCount fires the sink's error-count reset and immediately
// succeeds. It belongs at the front of the refresh root sequence, ahead
// of cleaning and indexing, per spec.md §4.I and the
// original_source/Project.cpp::buildIndex step it was recovered from.
type TaskClearErrorCount struct {
	sink events.Sink
}

// NewTaskClearErrorCount builds the task.
func NewTaskClearErrorCount(sink events.Sink) *TaskClearErrorCount {
	return &TaskClearErrorCount{sink: sink}
}

func (t *TaskClearErrorCount) Enter(bb *blackboard.Blackboard) {}

func (t *TaskClearErrorCount) Update(bb *blackboard.Blackboard) types.TaskState {
	t.sink.ClearErrorCount()
	return types.StateSuccess
}

func (t *TaskClearErrorCount) Exit(bb *blackboard.Blackboard)  {}
func (t *TaskClearErrorCount) Reset(bb *blackboard.Blackboard) {}
