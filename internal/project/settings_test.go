package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_NeedsMigrationOnLegacyFile(t *testing.T) {
	s := &Settings{}
	assert.True(t, s.NeedsMigration())
}

func TestSettings_NeedsMigrationFalseOnCurrentVersion(t *testing.T) {
	s := &Settings{Version: CurrentSettingsVersion}
	assert.False(t, s.NeedsMigration())
}

func TestMigrateSettings_StampsVersionAndPreservesOtherFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trailindex.toml")
	require.NoError(t, os.WriteFile(path, []byte("database_path = \"trail.db\"\n"), 0o644))

	loaded, _, err := LoadSettings(path)
	require.NoError(t, err)
	require.True(t, loaded.NeedsMigration())

	migrated, text, err := MigrateSettings(path, loaded)
	require.NoError(t, err)

	assert.Equal(t, CurrentSettingsVersion, migrated.Version)
	assert.Equal(t, "trail.db", migrated.DatabasePath)
	assert.False(t, migrated.NeedsMigration())
	assert.Contains(t, text, "trail.db")

	reloaded, _, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, CurrentSettingsVersion, reloaded.Version)
}
