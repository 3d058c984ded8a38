package scheduling

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// SetValue writes value at key once in Enter and returns Success from
// the first Update.
type SetValue[T any] struct {
	key   string
	value T
}

// NewSetValue builds a SetValue task.
func NewSetValue[T any](key string, value T) *SetValue[T] {
	return &SetValue[T]{key: key, value: value}
}

func (s *SetValue[T]) Enter(bb *blackboard.Blackboard) {
	blackboard.Set(bb, s.key, s.value)
}

func (s *SetValue[T]) Update(bb *blackboard.Blackboard) types.TaskState {
	return types.StateSuccess
}

func (s *SetValue[T]) Exit(bb *blackboard.Blackboard)  {}
func (s *SetValue[T]) Reset(bb *blackboard.Blackboard) {}
