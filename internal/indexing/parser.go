package indexing

import (
	"context"

	"github.com/nullptr-dev/trailindex/internal/storage"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// Parser is the opaque parsing collaborator spec.md §1 leaves external
// to the engine: given one command, it produces the symbols and
// reference edges that command's file contributes. A fatal, unrecoverable
// error (a compiler crash, an unreadable file) should be returned as an
// error; a recoverable issue should instead be recorded as a diagnostic
// on the returned IntermediateStorage with a nil error.
type Parser interface {
	Parse(ctx context.Context, cmd types.IndexerCommand) (*storage.IntermediateStorage, error)
}
