// Package config loads wxscrape settings from flags, WXSCRAPE_* environment
// variables, an optional YAML file and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/jmylchreest/wxscrape/internal/history"
	"github.com/jmylchreest/wxscrape/internal/scheduler"
	"github.com/jmylchreest/wxscrape/pkg/browser"
	"github.com/jmylchreest/wxscrape/pkg/export"
	"github.com/jmylchreest/wxscrape/pkg/extractor"
	"github.com/jmylchreest/wxscrape/pkg/llm"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WXSCRAPE"

// ErrMissingAPIKey means no model API key was found in flags, config or
// environment.
var ErrMissingAPIKey = errors.New("missing API key")

// Config is the resolved application configuration.
type Config struct {
	URL string `mapstructure:"url" validate:"omitempty,http_url"`

	// Model
	Provider       string        `mapstructure:"provider" validate:"omitempty,oneof=gemini openai anthropic"`
	Model          string        `mapstructure:"model"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url" validate:"omitempty,http_url"`
	MaxTokens      int           `mapstructure:"max_tokens" validate:"gte=0"`
	LLMTimeout     time.Duration `mapstructure:"llm_timeout" validate:"gte=0"`
	MaxContentSize string        `mapstructure:"max_content_size"`

	// Browser
	Headless          bool          `mapstructure:"headless"`
	ChromePath        string        `mapstructure:"chrome_path"`
	Stealth           bool          `mapstructure:"stealth"`
	SessionStatePath  string        `mapstructure:"session_state"`
	SaveSession       bool          `mapstructure:"save_session"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" validate:"gte=0"`
	SelectorTimeout   time.Duration `mapstructure:"selector_timeout" validate:"gte=0"`
	MinTextLength     int           `mapstructure:"min_text_length" validate:"gte=0"`
	ScrollSteps       int           `mapstructure:"scroll_steps" validate:"gte=0,lte=50"`

	// Output
	OutputDir            string `mapstructure:"output_dir"`
	BaseName             string `mapstructure:"base_name" validate:"required,excludesall=/"`
	HourlyIncludesPeriod bool   `mapstructure:"hourly_period"`
	HistoryDB            string `mapstructure:"history_db"`

	// Scheduling
	Schedule string `mapstructure:"schedule" validate:"required,cron"`
	Timezone string `mapstructure:"timezone" validate:"required,tz"`

	// maxContentBytes is MaxContentSize parsed.
	maxContentBytes int
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	b := browser.DefaultConfig()
	e := extractor.DefaultConfig()

	// keys without a real default are still registered so that Unmarshal
	// sees their WXSCRAPE_* overrides
	for _, key := range []string{"url", "provider", "model", "api_key", "base_url", "chrome_path"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("max_tokens", e.MaxTokens)
	v.SetDefault("llm_timeout", e.Timeout)
	v.SetDefault("max_content_size", "0")

	v.SetDefault("headless", b.Headless)
	v.SetDefault("stealth", b.Stealth)
	v.SetDefault("session_state", b.SessionStatePath)
	v.SetDefault("save_session", false)
	v.SetDefault("navigation_timeout", b.NavigationTimeout)
	v.SetDefault("selector_timeout", b.SelectorTimeout)
	v.SetDefault("min_text_length", b.MinTextLength)
	v.SetDefault("scroll_steps", b.ScrollSteps)

	v.SetDefault("output_dir", ".")
	v.SetDefault("base_name", export.DefaultBaseName)
	v.SetDefault("hourly_period", true)
	v.SetDefault("history_db", history.DefaultPath)

	v.SetDefault("schedule", scheduler.DefaultSchedule)
	v.SetDefault("timezone", "Local")
}

// BindEnv makes v read WXSCRAPE_* variables. WXSCRAPE_API_KEY is the only
// provider-agnostic key; provider keys are resolved in Load.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Load decodes v into a Config, resolves the provider and API key from the
// environment, and validates the result. It does not require an API key;
// call RequireAPIKey before any model work.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.resolveProvider()

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if s := strings.TrimSpace(cfg.MaxContentSize); s != "" && s != "0" {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return nil, fmt.Errorf("invalid max_content_size %q: %w", s, err)
		}
		cfg.maxContentBytes = int(n)
	}

	return &cfg, nil
}

// resolveProvider fills Provider, APIKey and Model. An explicit provider
// takes its key from the provider's own variable when none was given;
// otherwise the first provider with a key in the environment wins.
func (c *Config) resolveProvider() {
	switch {
	case c.Provider != "" && c.APIKey == "":
		c.APIKey = llm.APIKeyFromEnv(c.Provider)
	case c.Provider == "" && c.APIKey == "":
		c.Provider, c.APIKey = llm.DetectProvider()
	case c.Provider == "":
		// a bare WXSCRAPE_API_KEY is taken as a Gemini key
		c.Provider = "gemini"
	}
	if c.Provider == "" {
		c.Provider = "gemini"
	}
	if c.Model == "" {
		c.Model = llm.GetDefaultModel(c.Provider)
	}
}

// RequireAPIKey returns ErrMissingAPIKey when no key was resolved.
func (c *Config) RequireAPIKey() error {
	if c.APIKey != "" {
		return nil
	}
	return fmt.Errorf("%w: set %s, %s_API_KEY or --api-key", ErrMissingAPIKey, llm.APIKeyEnv(c.Provider), EnvPrefix)
}

// Location returns the scheduler time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MaxContentBytes is the page text limit in bytes (0 = unlimited).
func (c *Config) MaxContentBytes() int {
	return c.maxContentBytes
}

// ProviderConfig returns the model client settings.
func (c *Config) ProviderConfig() llm.ProviderConfig {
	pc := llm.DefaultProviderConfig()
	pc.APIKey = c.APIKey
	pc.BaseURL = c.BaseURL
	pc.Model = c.Model
	if c.LLMTimeout > 0 {
		pc.Timeout = c.LLMTimeout
	}
	return pc
}

// ExtractorConfig returns the extraction client settings.
func (c *Config) ExtractorConfig() extractor.Config {
	ec := extractor.DefaultConfig()
	ec.MaxTokens = c.MaxTokens
	ec.MaxContentSize = c.maxContentBytes
	ec.Timeout = c.LLMTimeout
	return ec
}

// BrowserConfig returns the browser driver settings.
func (c *Config) BrowserConfig() browser.Config {
	bc := browser.DefaultConfig()
	bc.Headless = c.Headless
	bc.ChromePath = c.ChromePath
	bc.Stealth = c.Stealth
	bc.SessionStatePath = c.SessionStatePath
	bc.SaveSession = c.SaveSession
	bc.NavigationTimeout = c.NavigationTimeout
	bc.SelectorTimeout = c.SelectorTimeout
	bc.MinTextLength = c.MinTextLength
	bc.ScrollSteps = c.ScrollSteps
	return bc
}

// Exporter returns an exporter writing to OutputDir.
func (c *Config) Exporter() *export.Exporter {
	e := export.New(c.OutputDir)
	e.BaseName = c.BaseName
	e.HourlyIncludesPeriod = c.HourlyIncludesPeriod
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	// like the built-in timezone tag, but "Local" is accepted
	_ = v.RegisterValidation("tz", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if name == "" {
			return false
		}
		_, err := time.LoadLocation(name)
		return err == nil
	})
	return v
}
