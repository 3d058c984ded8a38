package scheduling

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// Run describes one dispatched root task tree: its identifying id, the
// blackboard created for it, and a channel that receives its single
// terminal state.
type Run struct {
	ID         uuid.UUID
	Blackboard *blackboard.Blackboard
	Done       <-chan types.TaskState
}

// Scheduler owns a queue of root task trees and drives them one at a
// time: dispatch appends a root, a single internal goroutine pops the
// head, enters it, ticks update until terminal, then exits it. Two roots
// are never ticked concurrently (spec.md §4.D).
type Scheduler struct {
	mu      sync.Mutex
	queue   []*queuedRun
	waiting chan struct{}

	runningMu sync.Mutex
	runningBB *blackboard.Blackboard

	startOnce sync.Once
}

type queuedRun struct {
	id   uuid.UUID
	root Task
	bb   *blackboard.Blackboard
	done chan types.TaskState
}

// New creates an idle Scheduler. The worker loop starts lazily on the
// first Dispatch.
func New() *Scheduler {
	return &Scheduler{waiting: make(chan struct{}, 1)}
}

// Dispatch appends root to the queue and returns a handle to observe its
// outcome. The caller owns the returned Blackboard only for reading
// progress; the scheduler writes to it until the run terminates.
func (s *Scheduler) Dispatch(root Task) Run {
	s.startOnce.Do(func() { go s.loop() })

	run := &queuedRun{
		id:   uuid.New(),
		root: root,
		bb:   blackboard.New(),
		done: make(chan types.TaskState, 1),
	}

	s.mu.Lock()
	s.queue = append(s.queue, run)
	s.mu.Unlock()

	select {
	case s.waiting <- struct{}{}:
	default:
	}

	return Run{ID: run.id, Blackboard: run.bb, Done: run.done}
}

// Cancel sets the cooperative cancellation flag on whichever run is
// currently executing, if any. Queued-but-not-yet-started runs are
// unaffected; cancel them again once they start if that's required.
func (s *Scheduler) Cancel() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	if s.runningBB != nil {
		setCanceled(s.runningBB)
	}
}

func (s *Scheduler) loop() {
	for {
		run := s.pop()
		if run == nil {
			<-s.waiting
			continue
		}
		s.execute(run)
	}
}

func (s *Scheduler) pop() *queuedRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	run := s.queue[0]
	s.queue = s.queue[1:]
	return run
}

func (s *Scheduler) execute(run *queuedRun) {
	s.runningMu.Lock()
	s.runningBB = run.bb
	s.runningMu.Unlock()

	defer func() {
		s.runningMu.Lock()
		s.runningBB = nil
		s.runningMu.Unlock()
	}()

	run.root.Enter(run.bb)
	var state types.TaskState
	for {
		state = run.root.Update(run.bb)
		if state != types.StateRunning {
			break
		}
		time.Sleep(pollInterval)
	}
	run.root.Exit(run.bb)
	run.done <- state
}
