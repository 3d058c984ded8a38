package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nullptr-dev/trailindex/internal/config"
)

var (
	version = "dev"
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "trailindex",
	Short: "Incremental source indexing engine",
	Long: `trailindex maintains a symbol and reference index over a source
tree, refreshing only the files a change actually touches.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		loaded, err := config.LoadConfigs(cmd, cwd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	log.SetOutput(os.Stderr)
	config.InitFlags(rootCmd)
	rootCmd.Flags().BoolP("version", "v", false, "print the version and exit")
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("trailindex %s\n", version)
		os.Exit(0)
	}
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("trailindex: %v", err)
	}
}
