package scheduling

import (
	"sync/atomic"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// fakeTask is a scripted Task for exercising combinators: it returns
// StateRunning for runFor ticks, then terminal. Enter/Exit/Reset counts
// let tests assert the lifecycle contract.
type fakeTask struct {
	terminal    types.TaskState
	runFor      int
	ticks       int
	entered     atomic.Int32
	exited      atomic.Int32
	resetCalled atomic.Int32
}

func newFakeTask(terminal types.TaskState) *fakeTask {
	return &fakeTask{terminal: terminal}
}

func (f *fakeTask) runningFor(n int) *fakeTask {
	f.runFor = n
	return f
}

func (f *fakeTask) Enter(bb *blackboard.Blackboard) {
	f.entered.Add(1)
	f.ticks = 0
}

func (f *fakeTask) Update(bb *blackboard.Blackboard) types.TaskState {
	if f.ticks < f.runFor {
		f.ticks++
		return types.StateRunning
	}
	return f.terminal
}

func (f *fakeTask) Exit(bb *blackboard.Blackboard) {
	f.exited.Add(1)
}

func (f *fakeTask) Reset(bb *blackboard.Blackboard) {
	f.resetCalled.Add(1)
	f.ticks = 0
}
