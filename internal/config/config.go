// Package config loads the engine-recognized configuration table from
// file, environment and CLI flags, the viper/cobra layering
// morler-codai's config package uses for its own settings.
package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the engine's runtime configuration, spec.md §6.
type Config struct {
	IndexerThreadCount          int    `mapstructure:"indexer_thread_count"`
	CancelIndexingOnFatalErrors bool   `mapstructure:"cancel_indexing_on_fatal_errors"`
	ForceRefresh                bool   `mapstructure:"force_refresh"`
	PreprocessorOnly            bool   `mapstructure:"preprocessor_only"`
	DatabasePath                string `mapstructure:"database_path"`
	SettingsPath                string `mapstructure:"settings_path"`
	MetricsListenAddr           string `mapstructure:"metrics_listen_addr"`
}

// DefaultConfig mirrors spec.md §6's documented defaults: a non-positive
// IndexerThreadCount means "use idealThreadCount()", resolved by
// ResolvedThreadCount rather than stored pre-resolved, so an explicit 0
// from a config file still means "auto" rather than "zero workers".
var DefaultConfig = Config{
	IndexerThreadCount:          0,
	CancelIndexingOnFatalErrors: false,
	ForceRefresh:                false,
	PreprocessorOnly:            false,
	DatabasePath:                "trailindex.db",
	SettingsPath:                "trailindex-settings.toml",
	MetricsListenAddr:           "",
}

var cfgFile string

// LoadConfigs layers defaults, an optional config file, environment
// variables and CLI flags (in ascending priority) into a Config,
// following morler-codai's LoadConfigs shape.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	setDefaults()
	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trailindex")
		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	bindFlags(rootCmd)

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("indexer_thread_count", DefaultConfig.IndexerThreadCount)
	viper.SetDefault("cancel_indexing_on_fatal_errors", DefaultConfig.CancelIndexingOnFatalErrors)
	viper.SetDefault("force_refresh", DefaultConfig.ForceRefresh)
	viper.SetDefault("preprocessor_only", DefaultConfig.PreprocessorOnly)
	viper.SetDefault("database_path", DefaultConfig.DatabasePath)
	viper.SetDefault("settings_path", DefaultConfig.SettingsPath)
	viper.SetDefault("metrics_listen_addr", DefaultConfig.MetricsListenAddr)
}

func bindEnv() {
	_ = viper.BindEnv("indexer_thread_count", "TRAILINDEX_INDEXER_THREAD_COUNT")
	_ = viper.BindEnv("cancel_indexing_on_fatal_errors", "TRAILINDEX_CANCEL_ON_FATAL_ERRORS")
	_ = viper.BindEnv("force_refresh", "TRAILINDEX_FORCE_REFRESH")
	_ = viper.BindEnv("preprocessor_only", "TRAILINDEX_PREPROCESSOR_ONLY")
	_ = viper.BindEnv("database_path", "TRAILINDEX_DATABASE_PATH")
	_ = viper.BindEnv("settings_path", "TRAILINDEX_SETTINGS_PATH")
	_ = viper.BindEnv("metrics_listen_addr", "TRAILINDEX_METRICS_LISTEN_ADDR")
}

func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("indexer_thread_count", rootCmd.PersistentFlags().Lookup("threads"))
	_ = viper.BindPFlag("cancel_indexing_on_fatal_errors", rootCmd.PersistentFlags().Lookup("cancel-on-fatal-errors"))
	_ = viper.BindPFlag("force_refresh", rootCmd.PersistentFlags().Lookup("force"))
	_ = viper.BindPFlag("preprocessor_only", rootCmd.PersistentFlags().Lookup("preprocessor-only"))
	_ = viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("database"))
	_ = viper.BindPFlag("settings_path", rootCmd.PersistentFlags().Lookup("settings"))
	_ = viper.BindPFlag("metrics_listen_addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
}

// InitFlags registers the CLI flags LoadConfigs later binds into viper.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a trailindex config file (YAML)")
	rootCmd.PersistentFlags().Int("threads", DefaultConfig.IndexerThreadCount, "number of concurrent indexer workers (<=0 selects idealThreadCount())")
	rootCmd.PersistentFlags().Bool("cancel-on-fatal-errors", DefaultConfig.CancelIndexingOnFatalErrors, "abort the whole indexing run on the first fatal parser error")
	rootCmd.PersistentFlags().Bool("force", DefaultConfig.ForceRefresh, "clear the database and reindex every source file")
	rootCmd.PersistentFlags().Bool("preprocessor-only", DefaultConfig.PreprocessorOnly, "run the C/C++ preprocessor without full parsing")
	rootCmd.PersistentFlags().String("database", DefaultConfig.DatabasePath, "path to the persistent storage database")
	rootCmd.PersistentFlags().String("settings", DefaultConfig.SettingsPath, "path to the project settings file")
	rootCmd.PersistentFlags().String("metrics-addr", DefaultConfig.MetricsListenAddr, "address to serve Prometheus metrics on, empty disables")
}

// ResolvedThreadCount applies spec.md §6's indexerThreadCount fallback:
// a non-positive value means idealThreadCount(), which falls back to 4
// when the runtime can't report a sensible core count.
func (c *Config) ResolvedThreadCount() int {
	if c.IndexerThreadCount > 0 {
		return c.IndexerThreadCount
	}
	return idealThreadCount()
}

func idealThreadCount() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 4
}
