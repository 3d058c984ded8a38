package scheduling

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// Task is the abstract unit of work the scheduler drives, per spec.md
// §4.B. Enter is called exactly once before the first Update; Update is
// called repeatedly while it returns StateRunning; Exit is called exactly
// once after a terminal state, on every exit path including failure and
// cancellation; Reset returns the task to its pre-Enter state so it can
// be scheduled again.
//
// Implementations are not required to be thread-safe themselves — only
// one goroutine drives a given Task's lifecycle at a time — but the
// combinators that compose them must be.
type Task interface {
	Enter(bb *blackboard.Blackboard)
	Update(bb *blackboard.Blackboard) types.TaskState
	Exit(bb *blackboard.Blackboard)
	Reset(bb *blackboard.Blackboard)
}

// canceledKey is the blackboard key the scheduler and every combinator
// poll for cooperative cancellation (spec.md §5).
const canceledKey = "canceled"

// Canceled reports whether the current scheduler run has been asked to
// cancel, either by Scheduler.Cancel or by a sibling Parallel child
// failing. Leaf tasks should check this between bounded units of work.
func Canceled(bb *blackboard.Blackboard) bool {
	return blackboard.MustGet[bool](bb, canceledKey)
}

// setCanceled flips the cooperative cancellation flag for the current run.
func setCanceled(bb *blackboard.Blackboard) {
	blackboard.Set(bb, canceledKey, true)
}
