package scheduling

import (
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// pollInterval is how often a blocked driver goroutine re-checks a
// Running child, keeping cooperative polling loops (e.g. the merger and
// injector drain loops) from spinning at 100% CPU while they wait for
// work or for the run to drain.
const pollInterval = 200 * time.Microsecond

// Parallel runs its children concurrently, one goroutine per child
// (spec.md §5: "a Parallel combinator spawns one OS-level worker per
// child and joins them before reporting a terminal state"). It succeeds
// once every child has succeeded; it fails as soon as any child fails,
// which flips the shared cancellation flag so siblings still in flight
// wind down promptly.
type Parallel struct {
	children []Task
	done     chan struct{}
	results  []types.TaskState
}

// NewParallel builds a Parallel over the given children. Children must
// be independent: no ordering is promised between them.
func NewParallel(children ...Task) *Parallel {
	return &Parallel{children: children}
}

// Add appends a child and returns the receiver.
func (p *Parallel) Add(child Task) *Parallel {
	p.children = append(p.children, child)
	return p
}

func (p *Parallel) Enter(bb *blackboard.Blackboard) {
	p.done = make(chan struct{})
	p.results = make([]types.TaskState, len(p.children))

	var g errgroup.Group
	for i, child := range p.children {
		i, child := i, child
		g.Go(func() error {
			p.results[i] = driveToTerminal(bb, child)
			if p.results[i] == types.StateFailure {
				setCanceled(bb)
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(p.done)
	}()
}

// driveToTerminal runs one child's full Enter/Update/Exit lifecycle to
// completion, yielding between Running polls.
func driveToTerminal(bb *blackboard.Blackboard, child Task) types.TaskState {
	child.Enter(bb)
	for {
		state := child.Update(bb)
		if state != types.StateRunning {
			child.Exit(bb)
			return state
		}
		time.Sleep(pollInterval)
	}
}

func (p *Parallel) Update(bb *blackboard.Blackboard) types.TaskState {
	select {
	case <-p.done:
		return aggregate(p.results)
	default:
		return types.StateRunning
	}
}

func aggregate(results []types.TaskState) types.TaskState {
	sawCanceled := false
	for _, st := range results {
		if st == types.StateFailure {
			return types.StateFailure
		}
		if st == types.StateCanceled {
			sawCanceled = true
		}
	}
	if sawCanceled {
		return types.StateCanceled
	}
	return types.StateSuccess
}

func (p *Parallel) Exit(bb *blackboard.Blackboard) {}

func (p *Parallel) Reset(bb *blackboard.Blackboard) {
	for _, c := range p.children {
		c.Reset(bb)
	}
	p.done = nil
	p.results = nil
}
