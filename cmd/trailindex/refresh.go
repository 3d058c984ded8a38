package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Load the project and refresh its index",
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
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
