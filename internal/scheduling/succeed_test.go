package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

func TestSucceed_AlwaysSucceeds(t *testing.T) {
	bb := blackboard.New()
	s := NewSucceed()
	s.Enter(bb)
	assert.Equal(t, types.StateSuccess, s.Update(bb))
	s.Exit(bb)
	s.Reset(bb)
}

func TestSucceed_LetsSelectorAbsorbAPrecedingFailure(t *testing.T) {
	bb := blackboard.New()
	blackboard.Set(bb, "canceled", false)

	sel := NewSelector(NewRepeat(WhileSuccess, alwaysFailOnce{}), NewSucceed())
	sel.Enter(bb)

	var state types.TaskState
	for i := 0; i < 10; i++ {
		state = sel.Update(bb)
		if state != types.StateRunning {
			break
		}
	}
	assert.Equal(t, types.StateSuccess, state)
}

type alwaysFailOnce struct{}

func (alwaysFailOnce) Enter(bb *blackboard.Blackboard)                  {}
func (alwaysFailOnce) Update(bb *blackboard.Blackboard) types.TaskState { return types.StateFailure }
func (alwaysFailOnce) Exit(bb *blackboard.Blackboard)                   {}
func (alwaysFailOnce) Reset(bb *blackboard.Blackboard)                  {}
