package scheduling

import (
	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// Succeed always returns Success on its first Update, regardless of
// blackboard state. It is useful as the last child of a Selector that
// must never itself fail — e.g. a best-effort cleanup step whose own
// failure shouldn't abort the Sequence it sits in.
type Succeed struct{}

// NewSucceed returns a Succeed task.
func NewSucceed() *Succeed { return &Succeed{} }

func (Succeed) Enter(bb *blackboard.Blackboard)                  {}
func (Succeed) Update(bb *blackboard.Blackboard) types.TaskState { return types.StateSuccess }
func (Succeed) Exit(bb *blackboard.Blackboard)                   {}
func (Succeed) Reset(bb *blackboard.Blackboard)                  {}
