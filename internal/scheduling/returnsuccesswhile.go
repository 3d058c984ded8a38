package scheduling

import (
	"cmp"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// CompareOp is the comparison ReturnSuccessWhile polls the blackboard
// value against.
type CompareOp int

const (
	Equals CompareOp = iota
	GreaterThan
	LessThan
)

// ReturnSuccessWhile polls the blackboard and returns Success while
// op(bb[key], value) holds, Failure otherwise. It never returns Running;
// it is meant to be wrapped by Repeat to act as a synchronization
// barrier (spec.md §4.C).
type ReturnSuccessWhile[T cmp.Ordered] struct {
	key   string
	op    CompareOp
	value T
}

// NewReturnSuccessWhile builds a ReturnSuccessWhile polling key against
// value with op.
func NewReturnSuccessWhile[T cmp.Ordered](key string, op CompareOp, value T) *ReturnSuccessWhile[T] {
	return &ReturnSuccessWhile[T]{key: key, op: op, value: value}
}

func (r *ReturnSuccessWhile[T]) Enter(bb *blackboard.Blackboard) {}

func (r *ReturnSuccessWhile[T]) Update(bb *blackboard.Blackboard) types.TaskState {
	cur := blackboard.MustGet[T](bb, r.key)
	if r.holds(cur) {
		return types.StateSuccess
	}
	return types.StateFailure
}

func (r *ReturnSuccessWhile[T]) holds(cur T) bool {
	switch r.op {
	case Equals:
		return cur == r.value
	case GreaterThan:
		return cur > r.value
	case LessThan:
		return cur < r.value
	default:
		return false
	}
}

func (r *ReturnSuccessWhile[T]) Exit(bb *blackboard.Blackboard)  {}
func (r *ReturnSuccessWhile[T]) Reset(bb *blackboard.Blackboard) {}
