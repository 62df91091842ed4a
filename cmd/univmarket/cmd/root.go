// Package cmd implements the univmarket command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pritampani/UnivMarket/internal/config"
	"github.com/pritampani/UnivMarket/internal/logging"
)

var (
	cfg      *config.Config
	dataDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "univmarket",
	Short: "UnivMarket - campus marketplace with an offline-first core",
	Long: `UnivMarket serves the campus marketplace web app and keeps a durable
local queue of mutations made while offline, replaying them against the
remote service when connectivity returns.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command.
func Execute() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for the local store")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
