// Package cmd defines the CLI commands for the upa-monitor executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/config"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upa-monitor",
		Short: "Queue monitor for UPA emergency-care dashboards.",
		Long: `upa-monitor scrapes the Power BI dashboards embedded in UPA
emergency-care pages and flattens them into one row per unit: patient
counts, triage queue sizes and average waits per risk color.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; defaults and UPA_* env vars apply)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDumpCmd())

	return cmd
}

// loadEnv resolves configuration and builds the logger shared by all
// subcommands.
func loadEnv() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
