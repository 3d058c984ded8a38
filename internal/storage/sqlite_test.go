package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullptr-dev/trailindex/pkg/types"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStorage(filepath.Join(dir, "test.trailindex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewSQLiteStorage_StartsEmpty(t *testing.T) {
	s := newTestStorage(t)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, ModeEmpty, s.Mode())
	assert.False(t, s.IsIncompatible())
}

func TestSQLiteStorage_InjectAndGetInfoOnAllFiles(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	is := &IntermediateStorage{
		Files: []types.FileInfo{
			{Path: types.NewFilePath("/src/a.go"), LastWriteTime: now},
			{Path: types.NewFilePath("/src/b.go"), LastWriteTime: now},
		},
		Records: []SymbolRecord{
			{SourcePath: types.NewFilePath("/src/a.go"), Name: "Foo", Kind: "func", Line: 10},
		},
		Edges: []ReferenceEdge{
			{SourcePath: types.NewFilePath("/src/a.go"), TargetPath: types.NewFilePath("/src/b.go")},
		},
	}

	require.NoError(t, s.Inject(ctx, is))

	files, err := s.GetInfoOnAllFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	assert.False(t, s.IsEmpty(), "IsEmpty reflects the file row count, which Inject just raised")
}

func TestSQLiteStorage_GetReferencingAndReferenced(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	a := types.NewFilePath("/src/a.go")
	b := types.NewFilePath("/src/b.go")
	c := types.NewFilePath("/src/c.go")

	require.NoError(t, s.Inject(ctx, &IntermediateStorage{
		Edges: []ReferenceEdge{
			{SourcePath: a, TargetPath: b},
			{SourcePath: c, TargetPath: b},
		},
	}))

	referencing, err := s.GetReferencing(ctx, []types.FilePath{b})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.String(), c.String()}, pathsToStrings(referencing))

	referenced, err := s.GetReferenced(ctx, []types.FilePath{a})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.String()}, pathsToStrings(referenced))
}

func TestSQLiteStorage_ReferenceCacheInvalidatedOnInject(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	a := types.NewFilePath("/src/a.go")
	b := types.NewFilePath("/src/b.go")

	referencing, err := s.GetReferencing(ctx, []types.FilePath{b})
	require.NoError(t, err)
	assert.Empty(t, referencing)

	require.NoError(t, s.Inject(ctx, &IntermediateStorage{
		Edges: []ReferenceEdge{{SourcePath: a, TargetPath: b}},
	}))

	referencing, err = s.GetReferencing(ctx, []types.FilePath{b})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.String()}, pathsToStrings(referencing))
}

func TestSQLiteStorage_CleanFilesRemovesSymbolsEdgesAndFile(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	a := types.NewFilePath("/src/a.go")
	b := types.NewFilePath("/src/b.go")

	require.NoError(t, s.Inject(ctx, &IntermediateStorage{
		Files:   []types.FileInfo{{Path: a, LastWriteTime: time.Now()}, {Path: b, LastWriteTime: time.Now()}},
		Records: []SymbolRecord{{SourcePath: a, Name: "Foo", Kind: "func", Line: 1}},
		Edges:   []ReferenceEdge{{SourcePath: a, TargetPath: b}},
	}))

	require.NoError(t, s.CleanFiles(ctx, []types.FilePath{a}))

	files, err := s.GetInfoOnAllFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, b.String(), files[0].Path.String())

	referenced, err := s.GetReferenced(ctx, []types.FilePath{a})
	require.NoError(t, err)
	assert.Empty(t, referenced)
}

func TestSQLiteStorage_ClearWipesEverythingAndResetsToEmpty(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Inject(ctx, &IntermediateStorage{
		Files: []types.FileInfo{{Path: types.NewFilePath("/src/a.go"), LastWriteTime: time.Now()}},
	}))
	require.NoError(t, s.SetMode(ctx, ModeWrite))

	require.NoError(t, s.Clear(ctx))

	files, err := s.GetInfoOnAllFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, ModeEmpty, s.Mode())
}

func TestSQLiteStorage_ProjectSettingsTextRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	text, err := s.GetProjectSettingsText(ctx)
	require.NoError(t, err)
	assert.Empty(t, text)

	require.NoError(t, s.SetProjectSettingsText(ctx, "source_groups = []"))
	text, err = s.GetProjectSettingsText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "source_groups = []", text)

	require.NoError(t, s.SetProjectSettingsText(ctx, "source_groups = [\"x\"]"))
	text, err = s.GetProjectSettingsText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "source_groups = [\"x\"]", text)
}

func TestSQLiteStorage_SetModeRejectedWhenIncompatible(t *testing.T) {
	s := newTestStorage(t)
	s.isIncompatible = true

	err := s.SetMode(context.Background(), ModeWrite)
	assert.Error(t, err)
}

func TestApplyMigrations_DetectsIncompatibleVersion(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "incompatible.trailindex.db")

	db, err := openDatabase(dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, ApplyMigrations(context.Background(), db))
	_, err = db.Exec(`UPDATE meta SET value = ? WHERE key = 'schema_version'`, "999")
	require.NoError(t, err)

	err = ApplyMigrations(context.Background(), db)
	assert.ErrorIs(t, err, errIncompatibleSchema)
}

func TestNewSQLiteStorage_IncompatibleSchemaSetsModeWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "incompatible.trailindex.db")

	db, err := openDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, ApplyMigrations(context.Background(), db))
	_, err = db.Exec(`UPDATE meta SET value = ? WHERE key = 'schema_version'`, "999")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.True(t, s.IsIncompatible())
	assert.Equal(t, ModeIncompatible, s.Mode())
}

func pathsToStrings(paths []types.FilePath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}
