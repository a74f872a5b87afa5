package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/wxscrape/internal/config"
	"github.com/jmylchreest/wxscrape/internal/history"
	"github.com/jmylchreest/wxscrape/internal/logger"
	"github.com/jmylchreest/wxscrape/internal/pipeline"
	"github.com/jmylchreest/wxscrape/pkg/browser"
	"github.com/jmylchreest/wxscrape/pkg/extractor"
	"github.com/jmylchreest/wxscrape/pkg/llm"
)

// addPipelineFlags registers the flags shared by scrape and schedule.
func addPipelineFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("url", "u", "", "forecast page URL")

	// LLM settings
	flags.StringP("provider", "p", "", "LLM provider: "+strings.Join(llm.AvailableProviders(), ", ")+" (auto-detects from env vars)")
	flags.StringP("model", "m", "", "model name (provider-specific)")
	flags.StringP("api-key", "k", "", "API key (or use env var)")
	flags.String("base-url", "", "custom API base URL")
	flags.Duration("llm-timeout", 0, "model call timeout (default 2m)")
	flags.String("max-content-size", "", "max page text sent to the model (e.g., 100KB, 0=unlimited)")

	// Browser settings
	flags.Bool("headless", true, "run Chrome headless (use --headless=false to watch)")
	flags.String("chrome-path", "", "Chrome binary (default: search PATH)")
	flags.Bool("stealth", true, "inject the anti-detection script")
	flags.String("session-state", "", "cookies/localStorage state file (default browser_state.json)")
	flags.Bool("save-session", false, "write the session state back after each fetch")
	flags.Duration("navigation-timeout", 0, "page load timeout (default 20s)")
	flags.Int("min-text-length", 0, "shortest page text accepted (default 500)")

	// Output settings
	flags.StringP("output-dir", "o", "", "directory for JSON and CSV files (default .)")
	flags.String("base-name", "", "output file prefix (default Universal_Monthly)")
	flags.Bool("hourly-period", true, "include forecast_period in the hourly CSV (--hourly-period=false keeps the legacy column layout)")
	flags.String("history-db", "", "run history database, empty string disables (default wxscrape_history.db)")
}

// bindFlags binds the command's changed flags to viper keys, mapping
// dashes to underscores. Binding happens per command so that commands
// sharing a flag name do not overwrite each other's binding.
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		}
	})
}

// buildRunner wires the pipeline from cfg. The returned cleanup closes the
// history store.
func buildRunner(cfg *config.Config) (*pipeline.Runner, func(), error) {
	noop := func() {}

	if err := cfg.RequireAPIKey(); err != nil {
		return nil, noop, err
	}

	provider, err := llm.NewProvider(cfg.Provider, cfg.ProviderConfig())
	if err != nil {
		return nil, noop, err
	}
	logger.Debug("provider created", "provider", provider.Name(), "model", provider.Model())

	opts := []pipeline.Option{
		pipeline.WithFetcher(browser.New(cfg.BrowserConfig())),
		pipeline.WithExtractor(extractor.New(provider, cfg.ExtractorConfig())),
		pipeline.WithExporter(cfg.Exporter()),
	}

	cleanup := noop
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return nil, noop, err
		}
		opts = append(opts, pipeline.WithRecorder(store))
		cleanup = func() { _ = store.Close() }
	}

	runner, err := pipeline.New(opts...)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	return runner, cleanup, nil
}
