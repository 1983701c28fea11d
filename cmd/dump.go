package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JeanCarlos070456/web-scraping-upa/internal/artifacts"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/config"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/dashboard"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/export"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/headless"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/parser"
	"github.com/JeanCarlos070456/web-scraping-upa/internal/registry"
)

func newDumpCmd() *cobra.Command {
	var targetName string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Render one dashboard and save its markup and screenshot",
		Long: `Renders a single dashboard with headless Chrome, bypassing the
cache, and saves the raw markup plus a screenshot under the dump
directory. The parsed row is printed so the artifacts can be compared
against what the parser extracted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			targets := cfg.ResolveTargets()
			target, ok := registry.Find(targets, targetName)
			if !ok {
				return fmt.Errorf("unknown target %q; see 'upa-monitor serve' /v1/targets for the registry", targetName)
			}

			renderer, err := buildRendererForDump(cfg, logger)
			if err != nil {
				return err
			}
			defer renderer.Close()

			dumper, err := artifacts.New(cfg.Scrape.DumpDir, logger)
			if err != nil {
				return err
			}

			result, shot, err := renderer.Dump(cmd.Context(), target.URL)
			if err != nil {
				return fmt.Errorf("render %s: %w", target.URL, err)
			}

			htmlPath, err := dumper.SaveHTML(target.Name, result.HTML)
			if err != nil {
				return err
			}
			if _, err := dumper.SavePNG(target.Name, shot); err != nil {
				return err
			}
			logger.Info("dump complete",
				zap.String("target", target.Name),
				zap.String("strategy", string(result.Strategy)),
				zap.String("html", htmlPath))

			parsed := parser.Parse(result.HTML)
			return export.WriteJSON(os.Stdout, []dashboard.Row{dashboard.FlattenRow(target, parsed)})
		},
	}

	cmd.Flags().StringVar(&targetName, "target", "", "registry name of the dashboard to dump")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// buildRendererForDump always starts the browser: dumping a raw HTTP
// response has no diagnostic value for an embedded report.
func buildRendererForDump(cfg config.Config, logger *zap.Logger) (*headless.Renderer, error) {
	renderer, err := headless.NewRenderer(headlessConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("init renderer: %w", err)
	}
	return renderer, nil
}
