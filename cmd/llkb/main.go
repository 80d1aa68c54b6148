// Package main implements the llkb CLI for learned-pattern knowledge-base
// operations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/config"
	"github.com/fyrsmithlabs/llkb/internal/logging"
)

var (
	// configPath is the YAML config file; empty means defaults + env.
	configPath string
	// rootDir overrides the knowledge root directory from the command line.
	rootDir string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "llkb",
	Short: "Learned-pattern knowledge base for UI test generation",
	Long: `llkb accumulates reusable UI-test knowledge across automated-testing
runs: it synthesizes interaction-pattern candidates from discovered
application profiles, merges them into a persistent learned-pattern store,
rolls up analytics over the lesson and component stores, and rate-governs
how fast new knowledge is admitted.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "knowledge root directory (overrides config)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootDir != "" {
		cfg.Root = rootDir
	}

	logger, err := logging.New(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}
