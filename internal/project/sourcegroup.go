package project

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nullptr-dev/trailindex/pkg/types"
)

// SourceGroup is the minimal language-agnostic slice of Sourcetrail's
// SourceGroup hierarchy this engine needs (spec.md §5.J supplemental
// feature): a root directory, include/exclude glob patterns, a language
// tag and a set of compiler arguments, enough to drive
// fetchAllSourceFilePaths / getIndexerCommands /
// fetchSourceFilePathsToIndex without a real language parser.
type SourceGroup struct {
	Name            string
	Language        string
	Root            string
	IncludePatterns []string
	ExcludePatterns []string
	CompilerArgs    []string

	// LastFingerprint is the CompilerArgsFingerprint recorded the last
	// time this group was indexed by a successful refresh, and
	// FilesNeedingReindex compares against it. The controller sets it in
	// memory after each successful Refresh; it is not persisted, so a
	// group built without one reports every candidate file on its first
	// FilesNeedingReindex call.
	LastFingerprint string
}

// FetchSourceFilePaths walks Root and returns every regular file
// matching IncludePatterns (all files, if empty) and none of
// ExcludePatterns.
func (g *SourceGroup) FetchSourceFilePaths() ([]types.FilePath, error) {
	var out []types.FilePath

	err := filepath.WalkDir(g.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(g.Root, path)
		if relErr != nil {
			rel = path
		}
		if !g.matches(rel) {
			return nil
		}
		out = append(out, types.NewFilePath(path))
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return out, nil
}

func (g *SourceGroup) matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range g.ExcludePatterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return false
		}
	}
	if len(g.IncludePatterns) == 0 {
		return true
	}
	for _, pattern := range g.IncludePatterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
	}
	return false
}

// CompilerArgsFingerprint hashes the group's current compiler arguments
// so a change in flags can be detected without storing the raw argument
// list per file.
func (g *SourceGroup) CompilerArgsFingerprint() string {
	h := sha256.New()
	h.Write([]byte(g.Language))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(g.CompilerArgs, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))
}

// FilesNeedingReindex implements delta.SourceGroup: every candidate
// needs reindexing if the group's compiler arguments changed since
// LastFingerprint was recorded, none otherwise.
func (g *SourceGroup) FilesNeedingReindex(candidates []types.FilePath) ([]types.FilePath, error) {
	if g.CompilerArgsFingerprint() == g.LastFingerprint {
		return nil, nil
	}
	return candidates, nil
}

// GetIndexerCommands builds one IndexerCommand per path, tagged with
// this group's language and compiler arguments.
func (g *SourceGroup) GetIndexerCommands(paths []types.FilePath, cancelOnFatalErrors, preprocessorOnly bool) []types.IndexerCommand {
	out := make([]types.IndexerCommand, 0, len(paths))
	for _, p := range paths {
		cmd := types.NewIndexerCommand(p, g.Language, g.CompilerArgs).
			WithCancelOnFatalErrors(cancelOnFatalErrors).
			WithPreprocessorOnly(preprocessorOnly)
		out = append(out, cmd)
	}
	return out
}
