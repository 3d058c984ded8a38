package delta

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullptr-dev/trailindex/pkg/trailerr"
	"github.com/nullptr-dev/trailindex/pkg/types"
)

// fakeFS is an in-memory types.FileSystem. A missing entry means the
// path does not exist on disk.
type fakeFS struct {
	modTimes map[string]time.Time
}

func newFakeFS() *fakeFS { return &fakeFS{modTimes: map[string]time.Time{}} }

func (f *fakeFS) set(path string, t time.Time) { f.modTimes[path] = t }

func (f *fakeFS) Stat(path string) (time.Time, error) {
	t, ok := f.modTimes[path]
	if !ok {
		return time.Time{}, errors.New("not found")
	}
	return t, nil
}
func (f *fakeFS) CreateDirectory(path string) error { return nil }
func (f *fakeFS) Remove(path string) error          { return nil }

// fakeGraph lets each test wire up canned edges without a real storage.
type fakeGraph struct {
	referencing map[string][]types.FilePath
	referenced  map[string][]types.FilePath
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{referencing: map[string][]types.FilePath{}, referenced: map[string][]types.FilePath{}}
}

func (g *fakeGraph) GetReferencing(paths []types.FilePath) ([]types.FilePath, error) {
	var out []types.FilePath
	for _, p := range paths {
		out = append(out, g.referencing[p.String()]...)
	}
	return out, nil
}

func (g *fakeGraph) GetReferenced(paths []types.FilePath) ([]types.FilePath, error) {
	var out []types.FilePath
	for _, p := range paths {
		out = append(out, g.referenced[p.String()]...)
	}
	return out, nil
}

func pathStrings(paths []types.FilePath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

func TestCompute_S1_EmptyProjectFullReindex(t *testing.T) {
	a := types.NewFilePath("a.cpp")
	fs := newFakeFS()
	graph := newFakeGraph()

	plan, err := Compute([]types.FilePath{a}, nil, fs, graph, nil, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{a.String()}, pathStrings(plan.FilesToIndex))
	assert.Empty(t, plan.FilesToClean)
}

func TestCompute_S2_SingleFileEdit(t *testing.T) {
	a := types.NewFilePath("a.cpp")
	b := types.NewFilePath("b.cpp")
	baseTime := time.Now()

	fs := newFakeFS()
	fs.set(a.String(), baseTime.Add(time.Second))
	fs.set(b.String(), baseTime)

	graph := newFakeGraph()

	persisted := []types.FileInfo{
		{Path: a, LastWriteTime: baseTime},
		{Path: b, LastWriteTime: baseTime},
	}

	plan, err := Compute([]types.FilePath{a, b}, persisted, fs, graph, nil, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{a.String()}, pathStrings(plan.FilesToClean))
	assert.ElementsMatch(t, []string{a.String()}, pathStrings(plan.FilesToIndex))
}

func TestCompute_S3_HeaderChangeRipples(t *testing.T) {
	aCpp := types.NewFilePath("a.cpp")
	hH := types.NewFilePath("h.h")
	baseTime := time.Now()

	fs := newFakeFS()
	fs.set(aCpp.String(), baseTime)
	fs.set(hH.String(), baseTime.Add(time.Second))

	graph := newFakeGraph()
	// a.cpp includes h.h: h.h is "referenced by" a.cpp, and a.cpp
	// "references" (is returned by getReferencing) h.h.
	graph.referencing[hH.String()] = []types.FilePath{aCpp}
	graph.referenced[aCpp.String()] = []types.FilePath{hH}

	persisted := []types.FileInfo{
		{Path: aCpp, LastWriteTime: baseTime},
		{Path: hH, LastWriteTime: baseTime},
	}

	// h.h is a header tracked only via the reference graph, not a
	// compile unit of its own — it never appears in the current
	// source-path set S.
	plan, err := Compute([]types.FilePath{aCpp}, persisted, fs, graph, nil, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{hH.String(), aCpp.String()}, pathStrings(plan.FilesToClean))
	assert.ElementsMatch(t, []string{aCpp.String()}, pathStrings(plan.FilesToIndex))
}

func TestCompute_S4_RemovedFile(t *testing.T) {
	cCpp := types.NewFilePath("c.cpp")
	fs := newFakeFS() // c.cpp absent: Stat fails.
	graph := newFakeGraph()

	persisted := []types.FileInfo{{Path: cCpp, LastWriteTime: time.Now()}}

	plan, err := Compute(nil, persisted, fs, graph, nil, false)
	require.NoError(t, err)

	assert.Contains(t, pathStrings(plan.FilesToClean), cCpp.String())
	assert.NotContains(t, pathStrings(plan.FilesToIndex), cCpp.String())
}

func TestCompute_FullRefreshIgnoresIncrementalResult(t *testing.T) {
	a := types.NewFilePath("a.cpp")
	b := types.NewFilePath("b.cpp")
	fs := newFakeFS()
	fs.set(a.String(), time.Now())
	fs.set(b.String(), time.Now())
	graph := newFakeGraph()

	persisted := []types.FileInfo{
		{Path: a, LastWriteTime: time.Now()},
		{Path: b, LastWriteTime: time.Now()},
	}

	plan, err := Compute([]types.FilePath{a, b}, persisted, fs, graph, nil, true)
	require.NoError(t, err)

	assert.Empty(t, plan.FilesToClean)
	assert.ElementsMatch(t, []string{a.String(), b.String()}, pathStrings(plan.FilesToIndex))
}

func TestCompute_NewFileIsAddedToFilesToIndex(t *testing.T) {
	a := types.NewFilePath("a.cpp")
	newFile := types.NewFilePath("new.cpp")
	baseTime := time.Now()

	fs := newFakeFS()
	fs.set(a.String(), baseTime)

	graph := newFakeGraph()
	persisted := []types.FileInfo{{Path: a, LastWriteTime: baseTime}}

	plan, err := Compute([]types.FilePath{a, newFile}, persisted, fs, graph, nil, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{newFile.String()}, pathStrings(plan.FilesToIndex))
	assert.Empty(t, plan.FilesToClean)
}

type fakeSourceGroup struct {
	needsReindex map[string]bool
}

func (g *fakeSourceGroup) FilesNeedingReindex(candidates []types.FilePath) ([]types.FilePath, error) {
	var out []types.FilePath
	for _, c := range candidates {
		if g.needsReindex[c.String()] {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestCompute_SourceGroupFlagsUnchangedFileForReindex(t *testing.T) {
	a := types.NewFilePath("a.cpp")
	baseTime := time.Now()

	fs := newFakeFS()
	fs.set(a.String(), baseTime)

	graph := newFakeGraph()
	persisted := []types.FileInfo{{Path: a, LastWriteTime: baseTime}}
	group := &fakeSourceGroup{needsReindex: map[string]bool{a.String(): true}}

	plan, err := Compute([]types.FilePath{a}, persisted, fs, graph, []SourceGroup{group}, false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{a.String()}, pathStrings(plan.FilesToIndex))
}

func TestCompute_PlannerInconsistencyReportedButPlanStillUsable(t *testing.T) {
	a := types.NewFilePath("a.cpp")
	ghost := types.NewFilePath("ghost.cpp")
	baseTime := time.Now()

	fs := newFakeFS()
	fs.set(a.String(), baseTime.Add(time.Second))

	graph := newFakeGraph()
	// getReferencing(a.cpp) claims ghost.cpp references it, but ghost.cpp
	// is neither a current source path nor a previously persisted one.
	graph.referencing[a.String()] = []types.FilePath{ghost}

	persisted := []types.FileInfo{{Path: a, LastWriteTime: baseTime}}

	plan, err := Compute([]types.FilePath{a}, persisted, fs, graph, nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, trailerr.ErrPlannerInconsistency)
	assert.Contains(t, pathStrings(plan.FilesToClean), ghost.String())
}
