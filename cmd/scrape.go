package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/export"
)

func newScrapeCmd() *cobra.Command {
	var (
		csvPath  string
		jsonPath string
		mode     string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every registered dashboard once",
		Long: `Fetches every registered UPA dashboard, parses the embedded report
and prints one flat row per unit. Rows can additionally be written to
CSV and JSON files.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if mode != "" {
				cfg.Scrape.Mode = mode
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			pipe, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}
			defer pipe.close()

			rows := pipe.coordinator.RunAll(cmd.Context(), cfg.ResolveTargets())

			if err := export.WriteJSON(os.Stdout, rows); err != nil {
				return err
			}
			if csvPath != "" {
				if err := writeFileWith(csvPath, rows, export.WriteCSV); err != nil {
					return err
				}
				logger.Info("csv written", zap.String("path", csvPath))
			}
			if jsonPath != "" {
				if err := writeFileWith(jsonPath, rows, export.WriteJSON); err != nil {
					return err
				}
				logger.Info("json written", zap.String("path", jsonPath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "also write rows to this CSV file")
	cmd.Flags().StringVar(&jsonPath, "json", "", "also write rows to this JSON file")
	cmd.Flags().StringVar(&mode, "mode", "", "fetch mode override: direct, rendered or auto")

	return cmd
}

func writeFileWith(path string, rows []dashboard.Row, write func(io.Writer, []dashboard.Row) error) error {
	f, err := os.Create(path) // #nosec G304 -- operator-supplied output path
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := write(f, rows); err != nil {
		return err
	}
	return nil
}
