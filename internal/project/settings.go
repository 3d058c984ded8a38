package project

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// SourceGroupConfig is the on-disk TOML representation of one
// SourceGroup.
type SourceGroupConfig struct {
	Name         string   `toml:"name"`
	Language     string   `toml:"language"`
	Root         string   `toml:"root"`
	Include      []string `toml:"include"`
	Exclude      []string `toml:"exclude"`
	CompilerArgs []string `toml:"compiler_args"`
}

// CurrentSettingsVersion is the settings file format version this
// binary writes and expects to read. A file with no version field (or
// an older one) decodes to a lower Version and is classified
// ProjectNeedsMigration on Load rather than compared byte-for-byte
// against the stored text snapshot, per
// original_source/Project.cpp's PROJECT_STATE_NEEDS_MIGRATION case.
const CurrentSettingsVersion = 1

// Settings is the on-disk project settings file, compared byte-for-byte
// against the text snapshot PersistentStorage keeps to detect
// ProjectOutdated (spec.md §4.J).
type Settings struct {
	Version            int                 `toml:"version"`
	DatabasePath       string              `toml:"database_path"`
	SourceGroupConfigs []SourceGroupConfig `toml:"source_group"`
}

// NeedsMigration reports whether s was written by an older version of
// this binary's settings format.
func (s *Settings) NeedsMigration() bool {
	return s.Version < CurrentSettingsVersion
}

// LoadSettings reads and parses path, returning both the decoded
// Settings and the raw text it was parsed from.
func LoadSettings(path string) (*Settings, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if _, err := toml.Decode(string(data), &s); err != nil {
		return nil, "", fmt.Errorf("parse settings: %w", err)
	}
	return &s, string(data), nil
}

// SaveSettings writes s to path as TOML.
func SaveSettings(path string, s *Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create settings file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return nil
}

// MigrateSettings rewrites path to CurrentSettingsVersion, preserving
// every other field, and returns both the migrated Settings and the
// text it was just written as, mirroring LoadSettings's two return
// values so callers can feed the result straight into a
// projectSettingsText snapshot.
func MigrateSettings(path string, s *Settings) (*Settings, string, error) {
	migrated := *s
	migrated.Version = CurrentSettingsVersion
	if err := SaveSettings(path, &migrated); err != nil {
		return nil, "", fmt.Errorf("migrate settings: %w", err)
	}

	_, text, err := LoadSettings(path)
	if err != nil {
		return nil, "", fmt.Errorf("reread migrated settings: %w", err)
	}
	return &migrated, text, nil
}

// SourceGroups converts the on-disk configs into SourceGroup, carrying
// forward the fingerprint the caller has on record for each by name.
func (s *Settings) SourceGroups(fingerprints map[string]string) []*SourceGroup {
	out := make([]*SourceGroup, 0, len(s.SourceGroupConfigs))
	for _, cfg := range s.SourceGroupConfigs {
		out = append(out, &SourceGroup{
			Name:            cfg.Name,
			Language:        cfg.Language,
			Root:            cfg.Root,
			IncludePatterns: cfg.Include,
			ExcludePatterns: cfg.Exclude,
			CompilerArgs:    cfg.CompilerArgs,
			LastFingerprint: fingerprints[cfg.Name],
		})
	}
	return out
}
