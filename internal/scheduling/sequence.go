package scheduling

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// Sequence runs its children in order, failing fast on any child failure
// or cancellation and succeeding only once every child has succeeded.
type Sequence struct {
	children []Task
	idx      int
}

// NewSequence builds a Sequence over the given children, run in order.
func NewSequence(children ...Task) *Sequence {
	return &Sequence{children: children}
}

// Add appends a child and returns the receiver, mirroring the teacher's
// addTask/addChildTasks chained-builder style.
func (s *Sequence) Add(child Task) *Sequence {
	s.children = append(s.children, child)
	return s
}

func (s *Sequence) Enter(bb *blackboard.Blackboard) {
	s.idx = 0
	if len(s.children) > 0 {
		s.children[0].Enter(bb)
	}
}

func (s *Sequence) Update(bb *blackboard.Blackboard) types.TaskState {
	for s.idx < len(s.children) {
		child := s.children[s.idx]
		state := child.Update(bb)
		if state == types.StateRunning {
			return types.StateRunning
		}
		child.Exit(bb)
		if state != types.StateSuccess {
			return state
		}
		s.idx++
		if s.idx < len(s.children) {
			s.children[s.idx].Enter(bb)
		}
	}
	return types.StateSuccess
}

func (s *Sequence) Exit(bb *blackboard.Blackboard) {}

func (s *Sequence) Reset(bb *blackboard.Blackboard) {
	for _, c := range s.children {
		c.Reset(bb)
	}
	s.idx = 0
}
