package scheduling

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// RepeatCondition selects when Repeat re-enters its child after it
// reaches a terminal state.
type RepeatCondition int

const (
	// WhileSuccess re-enters the child as long as it keeps succeeding.
	WhileSuccess RepeatCondition = iota
	// WhileFailure re-enters the child as long as it keeps failing.
	WhileFailure
	// Forever re-enters the child regardless of outcome, stopping only on
	// cancellation.
	Forever
	// Once never re-enters the child.
	Once
)

// Repeat re-enters its child while its terminal state matches cond,
// otherwise it propagates that terminal state upward. Cancellation
// always stops the loop immediately, regardless of cond.
type Repeat struct {
	cond  RepeatCondition
	child Task
}

// NewRepeat builds a Repeat decorator around child with the given
// condition.
func NewRepeat(cond RepeatCondition, child Task) *Repeat {
	return &Repeat{cond: cond, child: child}
}

func (r *Repeat) Enter(bb *blackboard.Blackboard) {
	r.child.Enter(bb)
}

func (r *Repeat) Update(bb *blackboard.Blackboard) types.TaskState {
	state := r.child.Update(bb)
	if state == types.StateRunning {
		return types.StateRunning
	}
	r.child.Exit(bb)

	if state == types.StateCanceled || Canceled(bb) {
		return types.StateCanceled
	}
	if r.shouldLoop(state) {
		r.child.Reset(bb)
		r.child.Enter(bb)
		return types.StateRunning
	}
	return state
}

func (r *Repeat) shouldLoop(state types.TaskState) bool {
	switch r.cond {
	case WhileSuccess:
		return state == types.StateSuccess
	case WhileFailure:
		return state == types.StateFailure
	case Forever:
		return true
	case Once:
		return false
	default:
		return false
	}
}

func (r *Repeat) Exit(bb *blackboard.Blackboard) {}

func (r *Repeat) Reset(bb *blackboard.Blackboard) {
	r.child.Reset(bb)
}
