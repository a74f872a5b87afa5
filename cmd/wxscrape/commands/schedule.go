package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/wxscrape/internal/pipeline"
	"github.com/jmylchreest/wxscrape/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Scrape a forecast page on a cron schedule",
	Long: `Run the scrape pipeline on a cron schedule until interrupted.

Runs never overlap; a run still in progress when the next one is due
delays it. A failed run is logged and the schedule continues.

Examples:
  # Daily at midnight local time (the default)
  wxscrape schedule -u "$URL"

  # Every six hours in Jakarta time, starting with an immediate run
  wxscrape schedule -u "$URL" --cron "0 */6 * * *" --timezone Asia/Jakarta --run-now`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		bindFlags(cmd)
		return nil
	},
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	addPipelineFlags(scheduleCmd)

	flags := scheduleCmd.Flags()
	flags.String("cron", "", "five-field cron expression (default \"0 0 * * *\")")
	flags.String("timezone", "", "IANA time zone for the schedule (default Local)")
	flags.Bool("run-now", false, "run once immediately before waiting for the schedule")
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	// --cron names the "schedule" key
	if f := cmd.Flags().Lookup("cron"); f.Changed {
		viper.Set("schedule", f.Value.String())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.URL == "" {
		return errors.New("no URL: pass -u/--url or set url in the config file")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	runner, cleanup, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := scheduler.New(cfg.Schedule, loc, pipeline.URLJob{Runner: runner, URL: cfg.URL})
	if err != nil {
		return err
	}

	runNow, _ := cmd.Flags().GetBool("run-now")
	logInfo("Scheduled %s at %q (%s), press Ctrl+C to stop", cfg.URL, cfg.Schedule, loc)
	return s.Run(ctx, runNow)
}
