package indexing

import (
	"context"
	"fmt"

	"github.com/nullptr-dev/trailindex/internal/blackboard"
	"github.com/nullptr-dev/trailindex/internal/scheduling"
	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/trailerr"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// TaskBuildIndex pops one command per Update call and runs it through
// the Parser, exactly as spec.md §4.I describes. The project controller
// wraps each one in a TaskDrainLoop and stands up K of them inside a
// Parallel to get K worker "threads" draining the same CommandList.
type TaskBuildIndex struct {
	cmds     *CommandList
	provider *storage.StorageProvider
	fileReg  *FileRegister
	parser   Parser

	lastErr error
}

// NewTaskBuildIndex builds a worker task over the shared queue,
// provider and file register.
func NewTaskBuildIndex(cmds *CommandList, provider *storage.StorageProvider, fileReg *FileRegister, parser Parser) *TaskBuildIndex {
	return &TaskBuildIndex{cmds: cmds, provider: provider, fileReg: fileReg, parser: parser}
}

func (t *TaskBuildIndex) Enter(bb *blackboard.Blackboard) {
	t.lastErr = nil
}

func (t *TaskBuildIndex) Update(bb *blackboard.Blackboard) types.TaskState {
	if scheduling.Canceled(bb) {
		return types.StateCanceled
	}

	var cmd types.IndexerCommand
	if !t.cmds.PopFront(&cmd) {
		return types.StateSuccess
	}

	if !t.fileReg.Claim(cmd.SourcePath) {
		// Already claimed by another worker; nothing to do this tick,
		// try the next command on the following Update.
		return types.StateRunning
	}

	blackboard.Update(bb, "indexer_count", func(n int) int { return n + 1 })
	defer blackboard.Update(bb, "indexer_count", func(n int) int { return n - 1 })

	is, err := t.parser.Parse(context.Background(), cmd)
	if err != nil {
		if cmd.CancelOnFatalErrors {
			t.fileReg.Release(cmd.SourcePath, FileUnparsed)
			t.lastErr = fmt.Errorf("%w: %s: %v", trailerr.ErrParserFatal, cmd.SourcePath.String(), err)
			return types.StateFailure
		}
		if is == nil {
			is = storage.NewIntermediateStorage()
		}
		is.AddDiagnostic(fmt.Sprintf("%s: %v", cmd.SourcePath.String(), err))
	}
	if is == nil {
		is = storage.NewIntermediateStorage()
	}

	t.provider.Push(is)
	t.fileReg.Release(cmd.SourcePath, FileParsed)
	blackboard.Update(bb, "indexed_source_file_count", func(n int) int { return n + 1 })

	return types.StateSuccess
}

// Err returns the fatal parser error that caused the last Failure, if
// any.
func (t *TaskBuildIndex) Err() error { return t.lastErr }

func (t *TaskBuildIndex) Exit(bb *blackboard.Blackboard) {}

func (t *TaskBuildIndex) Reset(bb *blackboard.Blackboard) {
	t.lastErr = nil
}
