package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// countingTask succeeds the first n times it runs to terminal, then
// fails, letting WhileSuccess tests observe a bounded number of loops.
type countingTask struct {
	remaining int
}

func (c *countingTask) Enter(bb *blackboard.Blackboard) {}
func (c *countingTask) Update(bb *blackboard.Blackboard) types.TaskState {
	if c.remaining > 0 {
		c.remaining--
		return types.StateSuccess
	}
	return types.StateFailure
}
func (c *countingTask) Exit(bb *blackboard.Blackboard)  {}
func (c *countingTask) Reset(bb *blackboard.Blackboard) {}

func TestRepeatWhileSuccessStopsOnFirstFailure(t *testing.T) {
	bb := blackboard.New()
	child := &countingTask{remaining: 3}
	r := NewRepeat(WhileSuccess, child)

	assert.Equal(t, types.StateFailure, runToTerminal(r, bb))
}

func TestRepeatOnceNeverLoops(t *testing.T) {
	bb := blackboard.New()
	child := newFakeTask(types.StateSuccess)
	r := NewRepeat(Once, child)

	assert.Equal(t, types.StateSuccess, runToTerminal(r, bb))
	assert.Equal(t, int32(1), child.entered.Load())
}

func TestRepeatStopsImmediatelyOnCancellation(t *testing.T) {
	bb := blackboard.New()
	child := newFakeTask(types.StateCanceled)
	r := NewRepeat(Forever, child)

	assert.Equal(t, types.StateCanceled, runToTerminal(r, bb))
	assert.Equal(t, int32(1), child.entered.Load())
}

func TestRepeatWhileFailureLoopsUntilSuccess(t *testing.T) {
	bb := blackboard.New()
	child := &countingFailThenSucceed{failuresLeft: 2}
	r := NewRepeat(WhileFailure, child)

	assert.Equal(t, types.StateSuccess, runToTerminal(r, bb))
	assert.Equal(t, 0, child.failuresLeft)
}

type countingFailThenSucceed struct {
	failuresLeft int
}

func (c *countingFailThenSucceed) Enter(bb *blackboard.Blackboard) {}
func (c *countingFailThenSucceed) Update(bb *blackboard.Blackboard) types.TaskState {
	if c.failuresLeft > 0 {
		c.failuresLeft--
		return types.StateFailure
	}
	return types.StateSuccess
}
func (c *countingFailThenSucceed) Exit(bb *blackboard.Blackboard)  {}
func (c *countingFailThenSucceed) Reset(bb *blackboard.Blackboard) {}
