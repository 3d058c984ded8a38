package delta

import (
	"fmt"

	"github.com/nullptr-dev/trailindex/pkg/trailerr"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// ReferenceGraph is the subset of storage.PersistentStorage the planner
// needs to walk the reference graph. Delta depends only on this
// interface, not the storage package, so it stays a leaf package with
// no dependency on how the graph is persisted.
type ReferenceGraph interface {
	GetReferencing(paths []types.FilePath) ([]types.FilePath, error)
	GetReferenced(paths []types.FilePath) ([]types.FilePath, error)
}

// SourceGroup is the minimal surface step 5 needs from a language's
// source group: given the unchanged-and-still-present candidates, which
// of them must be reindexed anyway (e.g. because its compiler flags
// changed). internal/project.SourceGroup implements this.
type SourceGroup interface {
	FilesNeedingReindex(candidates []types.FilePath) ([]types.FilePath, error)
}

// Plan is the result of the delta computation: the files whose prior
// symbols/edges must be cleaned, and the files that must be (re)parsed.
type Plan struct {
	FilesToClean []types.FilePath
	FilesToIndex []types.FilePath
}

type pathSet map[string]types.FilePath

func newPathSet(paths ...[]types.FilePath) pathSet {
	s := make(pathSet)
	for _, group := range paths {
		for _, p := range group {
			s[p.String()] = p
		}
	}
	return s
}

func (s pathSet) has(p types.FilePath) bool {
	_, ok := s[p.String()]
	return ok
}

func (s pathSet) add(p types.FilePath) {
	s[p.String()] = p
}

func (s pathSet) slice() []types.FilePath {
	out := make([]types.FilePath, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	return out
}

func (s pathSet) minus(other pathSet) pathSet {
	out := make(pathSet)
	for k, p := range s {
		if _, ok := other[k]; !ok {
			out[k] = p
		}
	}
	return out
}

// Compute runs the six-step delta algorithm from spec.md §4.G.
//
// sourcePaths is S, the current set of source paths on disk.
// persisted is the FileInfo the persistent storage has on file, as of
// the last successful refresh. fs.Stat is consulted for each persisted
// path to decide changed vs. unchanged; a path missing on disk counts
// as changed (it must be cleaned, never re-added to filesToIndex).
//
// A non-nil error is a PlannerInconsistency (spec.md §7): the graph
// named a path that's neither a current source path nor a previously
// known one. Plan is still populated and usable — the inconsistent path
// has already been added to FilesToClean defensively — the error is for
// the caller to log, not a reason to abort the refresh.
func Compute(
	sourcePaths []types.FilePath,
	persisted []types.FileInfo,
	fs types.FileSystem,
	graph ReferenceGraph,
	groups []SourceGroup,
	fullRefresh bool,
) (Plan, error) {
	S := newPathSet(sourcePaths)

	unchanged, changed := partition(persisted, fs)

	filesToClean := newPathSet(changed.slice())

	referencingChanged, err := graph.GetReferencing(changed.slice())
	if err != nil {
		return Plan{}, fmt.Errorf("get referencing changed files: %w", err)
	}
	for _, p := range referencingChanged {
		filesToClean.add(p)
	}

	static := S.minus(changed)

	staticReferenced, err := graph.GetReferenced(static.slice())
	if err != nil {
		return Plan{}, fmt.Errorf("get referenced by static files: %w", err)
	}
	staticReferencedSet := newPathSet(staticReferenced)

	dynamicReferenced, err := graph.GetReferenced(changed.slice())
	if err != nil {
		return Plan{}, fmt.Errorf("get referenced by changed files: %w", err)
	}

	var inconsistency error
	for _, p := range dynamicReferenced {
		if !staticReferencedSet.has(p) && !static.has(p) {
			filesToClean.add(p)
		}
	}

	persistedPaths := newPathSet()
	for _, f := range persisted {
		persistedPaths.add(f.Path)
	}
	knownPaths := S.union(persistedPaths)
	for _, p := range referencingChanged {
		if !knownPaths.has(p) {
			filesToClean.add(p)
			inconsistency = fmt.Errorf("%w: getReferencing returned unknown path %q", trailerr.ErrPlannerInconsistency, p.String())
		}
	}
	for _, p := range dynamicReferenced {
		if !knownPaths.has(p) {
			filesToClean.add(p)
			inconsistency = fmt.Errorf("%w: getReferenced returned unknown path %q", trailerr.ErrPlannerInconsistency, p.String())
		}
	}

	filesToAdd := static.minus(unchanged)

	filesToIndex := newPathSet(filesToAdd.slice())

	remaining := static.minus(filesToAdd)
	for _, g := range groups {
		need, err := g.FilesNeedingReindex(remaining.slice())
		if err != nil {
			return Plan{}, fmt.Errorf("source group reindex check: %w", err)
		}
		for _, p := range need {
			filesToIndex.add(p)
		}
	}

	// Any current source file slated for cleaning (whether directly
	// changed or swept in by a referencing/ripple rule) needs its
	// symbols rebuilt. A header dragged into filesToClean by the same
	// rule has no IndexerCommand of its own — it's rediscovered when its
	// includer is reparsed, so it is deliberately left out here.
	for _, p := range filesToClean.slice() {
		if S.has(p) {
			filesToIndex.add(p)
		}
	}

	if fullRefresh {
		filesToClean = newPathSet()
		filesToIndex = S
	}

	return Plan{
		FilesToClean: filesToClean.slice(),
		FilesToIndex: filesToIndex.slice(),
	}, inconsistency
}

func (s pathSet) union(other pathSet) pathSet {
	out := make(pathSet, len(s)+len(other))
	for k, p := range s {
		out[k] = p
	}
	for k, p := range other {
		out[k] = p
	}
	return out
}

// partition splits persisted FileInfo into unchanged (on-disk mtime is
// not newer than the stored one) and changed (newer, or missing from
// disk entirely).
func partition(persisted []types.FileInfo, fs types.FileSystem) (unchanged, changed pathSet) {
	unchanged = make(pathSet)
	changed = make(pathSet)
	for _, f := range persisted {
		modTime, err := fs.Stat(f.Path.String())
		if err != nil {
			changed[f.Path.String()] = f.Path
			continue
		}
		if modTime.After(f.LastWriteTime) {
			changed[f.Path.String()] = f.Path
			continue
		}
		unchanged[f.Path.String()] = f.Path
	}
	return unchanged, changed
}
