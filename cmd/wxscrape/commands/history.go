package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/wxscrape/internal/history"
	"github.com/jmylchreest/wxscrape/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent scrape runs",
	Long: `List the runs recorded in the history database, newest first.

Examples:
  wxscrape history
  wxscrape history -n 50 --format json`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		bindFlags(cmd)
		return nil
	},
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	flags := historyCmd.Flags()
	flags.IntP("limit", "n", 20, "number of runs to show (0 = all)")
	flags.StringP("format", "f", string(output.FormatTable), "output format: table, json, jsonl, yaml")
	flags.String("history-db", "", "run history database (default wxscrape_history.db)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	path := viper.GetString("history_db")
	if path == "" {
		return errors.New("run history is disabled (history_db is empty)")
	}
	if _, err := os.Stat(path); err != nil {
		logInfo("No run history at %s", path)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	w, err := output.NewWriter(os.Stdout, output.Format(format))
	if err != nil {
		return err
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}
	return output.WriteAll(w, runs)
}
