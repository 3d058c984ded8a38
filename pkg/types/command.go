package types

import "github.com/google/uuid"

// IndexerCommand is an opaque description of one file to parse. It is
// immutable once enqueued into an IndexerCommandList.
type IndexerCommand struct {
	ID                  uuid.UUID
	SourcePath          FilePath
	Language            string
	CompilerArgs        []string
	CancelOnFatalErrors bool
	PreprocessorOnly    bool
}

// NewIndexerCommand builds a command with a fresh tracing id.
func NewIndexerCommand(sourcePath FilePath, language string, compilerArgs []string) IndexerCommand {
	return IndexerCommand{
		ID:           uuid.New(),
		SourcePath:   sourcePath,
		Language:     language,
		CompilerArgs: append([]string(nil), compilerArgs...),
	}
}

// WithCancelOnFatalErrors returns a copy of the command with the flag set.
func (c IndexerCommand) WithCancelOnFatalErrors(v bool) IndexerCommand {
	c.CancelOnFatalErrors = v
	return c
}

// WithPreprocessorOnly returns a copy of the command with the flag set.
// PreprocessorOnly only has an effect for C/C++ commands; other languages
// ignore it.
func (c IndexerCommand) WithPreprocessorOnly(v bool) IndexerCommand {
	c.PreprocessorOnly = v
	return c
}
