package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/wxscrape/internal/history"
	"github.com/jmylchreest/wxscrape/internal/logger"
	"github.com/jmylchreest/wxscrape/internal/output"
	"github.com/jmylchreest/wxscrape/internal/pipeline"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a forecast page once",
	Long: `Fetch a forecast page, extract its forecasts with the language model
and write the JSON document and CSV files.

A page that fails to load, or that yields no forecast data, is logged and
recorded in the run history; no files are written and the command still
succeeds. Only failures to write the output files make it exit non-zero.

Examples:
  wxscrape scrape -u "https://www.example.com/weather/palangka-raya/monthly"

  # Watch the browser and print the document to stdout as YAML
  wxscrape scrape -u "$URL" --headless=false --print yaml`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		bindFlags(cmd)
		return nil
	},
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	addPipelineFlags(scrapeCmd)
	scrapeCmd.Flags().String("print", "", "also print the document to stdout: json, yaml")
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.URL == "" {
		return errors.New("no URL: pass -u/--url or set url in the config file")
	}

	runner, cleanup, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := runner.Run(ctx, cfg.URL)
	if err != nil {
		return err
	}

	switch res.Status {
	case history.StatusOK:
		logInfo("Extracted: %s", pipeline.Preview(res.Counts))
		for _, p := range res.Paths.All() {
			logInfo("  %s", p)
		}
	case history.StatusNoData:
		logInfo("No forecast data found on %s", cfg.URL)
	case history.StatusFetchFailed:
		logInfo("Fetch failed: %v", res.Err)
	}

	if format, _ := cmd.Flags().GetString("print"); format != "" && res.Document != nil {
		w, err := output.NewWriter(os.Stdout, output.Format(format))
		if err != nil {
			return err
		}
		if err := w.Write(res.Document); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			logger.Error("failed to print document", "error", err)
			return err
		}
	}
	return nil
}
