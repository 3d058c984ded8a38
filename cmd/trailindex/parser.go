package main

import (
	"context"
	"time"

	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// fileStatParser is the indexing.Parser this binary ships with. Real
// language frontends are an external collaborator the engine never
// depends on (spec.md §1), so there is nothing for a general-purpose CLI
// to link against; this implementation records that a command ran
// without extracting any symbols, letting the scheduler, delta planner
// and storage pipeline be exercised end to end against real source trees
// while a project supplies its own Parser for anything beyond that.
type fileStatParser struct {
	fs types.FileSystem
}

func newFileStatParser(fs types.FileSystem) *fileStatParser {
	return &fileStatParser{fs: fs}
}

func (p *fileStatParser) Parse(ctx context.Context, cmd types.IndexerCommand) (*storage.IntermediateStorage, error) {
	out := storage.NewIntermediateStorage()

	modTime := time.Now()
	if t, err := p.fs.Stat(cmd.SourcePath.String()); err == nil {
		modTime = t
	}
	out.Files = append(out.Files, types.FileInfo{
		Path:          cmd.SourcePath,
		LastWriteTime: modTime,
	})
	return out, nil
}
