package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nullptr-dev/trailindex/internal/cliui"
	"github.com/nullptr-dev/trailindex/internal/config"
	"github.com/nullptr-dev/trailindex/internal/metrics"
	"github.com/nullptr-dev/trailindex/internal/osfs"
	"github.com/nullptr-dev/trailindex/internal/project"
	"github.com/nullptr-dev/trailindex/internal/scheduling"
	"github.com/nullptr-dev/trailindex/internal/storage"
)

// dependencies wires the ambient and domain stacks into one Controller,
// the composition root every subcommand shares.
type dependencies struct {
	controller *project.Controller
	persistent *storage.SQLiteStorage
	metrics    *metrics.Metrics
}

func buildDependencies(cfg *config.Config) (*dependencies, error) {
	persistent, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", cfg.DatabasePath, err)
	}

	settings, _, err := project.LoadSettings(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings %q: %w", cfg.SettingsPath, err)
	}

	fs := osfs.New()
	sourceGroups := settings.SourceGroups(nil)
	scheduler := scheduling.New()
	sink := cliui.New(nil)
	reg := metrics.New(prometheus.DefaultRegisterer)

	if cfg.MetricsListenAddr != "" {
		serveMetrics(cfg.MetricsListenAddr)
	}

	controller := project.NewController(
		persistent,
		fs,
		scheduler,
		newFileStatParser(fs),
		sourceGroups,
		cfg.SettingsPath,
		&project.Config{
			ThreadCount:         cfg.ResolvedThreadCount(),
			CancelOnFatalErrors: cfg.CancelIndexingOnFatalErrors,
			PreprocessorOnly:    cfg.PreprocessorOnly,
			Sink:                sink,
			Metrics:             reg,
		},
	)

	return &dependencies{controller: controller, persistent: persistent, metrics: reg}, nil
}

func (d *dependencies) Close() error {
	return d.persistent.Close()
}

// serveMetrics starts a background Prometheus /metrics endpoint. A
// listen error is logged, not fatal: metrics are diagnostic, not load
// bearing for a refresh.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics server on %s: %v", addr, err)
		}
	}()
}
