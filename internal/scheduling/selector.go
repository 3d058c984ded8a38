package scheduling

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// Selector runs its children in order, succeeding at the first child
// success and failing only once every child has failed. A canceled
// child short-circuits the selector with StateCanceled.
type Selector struct {
	children []Task
	idx      int
}

// NewSelector builds a Selector over the given children, tried in order.
func NewSelector(children ...Task) *Selector {
	return &Selector{children: children}
}

// Add appends a child and returns the receiver.
func (s *Selector) Add(child Task) *Selector {
	s.children = append(s.children, child)
	return s
}

func (s *Selector) Enter(bb *blackboard.Blackboard) {
	s.idx = 0
	if len(s.children) > 0 {
		s.children[0].Enter(bb)
	}
}

func (s *Selector) Update(bb *blackboard.Blackboard) types.TaskState {
	for s.idx < len(s.children) {
		child := s.children[s.idx]
		state := child.Update(bb)
		if state == types.StateRunning {
			return types.StateRunning
		}
		child.Exit(bb)
		if state == types.StateSuccess || state == types.StateCanceled {
			return state
		}
		s.idx++
		if s.idx < len(s.children) {
			s.children[s.idx].Enter(bb)
		}
	}
	return types.StateFailure
}

func (s *Selector) Exit(bb *blackboard.Blackboard) {}

func (s *Selector) Reset(bb *blackboard.Blackboard) {
	for _, c := range s.children {
		c.Reset(bb)
	}
	s.idx = 0
}
