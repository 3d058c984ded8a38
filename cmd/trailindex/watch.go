package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nullptr-dev/trailindex/internal/project"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh once, then keep watching the settings file for changes",
	Long: `watch performs an initial load and refresh, then watches the
project settings file: any write flags the project ProjectSettingsUpdated
and triggers another refresh. It runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDependencies(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := deps.Close(); err != nil {
				log.Printf("close database: %v", err)
			}
		}()

		ctx := context.Background()
		if err := deps.controller.Load(ctx); err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		if err := deps.controller.Refresh(ctx, cfg.ForceRefresh); err != nil {
			return fmt.Errorf("refresh project: %w", err)
		}

		watcher, err := project.WatchSettings(cfg.SettingsPath, func() {
			deps.controller.SetStateSettingsUpdated()
			log.Println("settings changed, refreshing")
			if err := deps.controller.Refresh(ctx, false); err != nil {
				log.Printf("refresh after settings change: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("watch settings: %w", err)
		}
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Printf("close settings watcher: %v", err)
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		log.Printf("received signal %v, shutting down", sig)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
