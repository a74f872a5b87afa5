// Package commands implements the CLI commands for wxscrape.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/wxscrape/internal/config"
	"github.com/jmylchreest/wxscrape/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "wxscrape",
	Short: "Scrape weather forecast pages into JSON and CSV",
	Long: `wxscrape loads a weather forecast page in headless Chrome, asks a
language model to extract the daily, hourly and monthly forecasts it shows,
and writes them as one JSON document plus one CSV per forecast type.

API keys are read from GEMINI_API_KEY, ANTHROPIC_API_KEY, OPENAI_API_KEY or
WXSCRAPE_API_KEY (a .env file in the working directory is loaded first).
Every flag can also be set in $HOME/.wxscrape.yaml or as WXSCRAPE_<FLAG>.

Examples:
  # Scrape once
  wxscrape scrape -u "https://www.example.com/weather/palangka-raya/monthly"

  # Scrape every day at midnight, starting now
  wxscrape schedule -u "https://www.example.com/weather/palangka-raya/monthly" --run-now

  # BMKG province table, no model needed
  wxscrape bmkg

  # Last ten runs
  wxscrape history -n 10`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
		})
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.wxscrape.yaml)")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("env_file", flags.Lookup("env-file"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
}

func initConfig() {
	if err := config.LoadDotEnv(viper.GetString("env_file")); err != nil {
		logError("%v", err)
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".wxscrape")
		viper.SetConfigType("yaml")
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	// Read config file (ignore error if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && viper.GetString("config") != "" {
			logError("reading config: %v", err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logError("%v", err)
		return err
	}
	return nil
}

// loadConfig resolves the configuration for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded", "file", viper.ConfigFileUsed(), "provider", cfg.Provider, "model", cfg.Model)
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
