package indexing

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/events"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// TaskShowStatusDialog fires a non-blocking UI event and immediately
// succeeds, per spec.md §4.I.
type TaskShowStatusDialog struct {
	sink  events.Sink
	title string
	text  string
}

// NewTaskShowStatusDialog builds the task.
func NewTaskShowStatusDialog(sink events.Sink, title, text string) *TaskShowStatusDialog {
	return &TaskShowStatusDialog{sink: sink, title: title, text: text}
}

func (t *TaskShowStatusDialog) Enter(bb *blackboard.Blackboard) {}

func (t *TaskShowStatusDialog) Update(bb *blackboard.Blackboard) types.TaskState {
	t.sink.ShowStatusDialog(t.title, t.text)
	return types.StateSuccess
}

func (t *TaskShowStatusDialog) Exit(bb *blackboard.Blackboard)  {}
func (t *TaskShowStatusDialog) Reset(bb *blackboard.Blackboard) {}
