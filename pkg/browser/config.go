// Package browser drives a headless Chrome tab to capture the visible text
// of a JavaScript-rendered forecast page.
package browser

import "time"

// DefaultUserAgent is a current desktop Chrome on Windows.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultMarkerXPath matches the containers forecast sites render their
// monthly, daily and hourly tables into.
const DefaultMarkerXPath = "//div[contains(@class, 'MonthlyContent') or contains(@class, 'Monthly--forecast')]" +
	" | //div[contains(@class, 'DailyContent') or contains(@class, 'HourlyContent') or contains(@class, 'table-responsive') or contains(@class, 'forecast-container')]"

// Config holds configuration for the Driver.
type Config struct {
	Headless   bool
	ChromePath string // empty means search the usual install locations
	UserAgent  string
	Stealth    bool // inject the anti-detection script before navigation

	// SessionStatePath is a cookies + localStorage file applied before
	// navigation when it exists.
	SessionStatePath string
	// SaveSession writes the session back after a successful capture.
	SaveSession bool

	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	MarkerXPath       string

	ScrollSteps int
	ScrollPause time.Duration
	SettlePause time.Duration

	// MinTextLength is the shortest capture treated as real content.
	// Anything shorter is assumed to be a block or challenge page.
	MinTextLength int
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		UserAgent:         DefaultUserAgent,
		Stealth:           true,
		SessionStatePath:  "browser_state.json",
		NavigationTimeout: 20 * time.Second,
		SelectorTimeout:   10 * time.Second,
		MarkerXPath:       DefaultMarkerXPath,
		ScrollSteps:       5,
		ScrollPause:       time.Second,
		SettlePause:       2 * time.Second,
		MinTextLength:     500,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = d.NavigationTimeout
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = d.SelectorTimeout
	}
	if c.MarkerXPath == "" {
		c.MarkerXPath = d.MarkerXPath
	}
	if c.ScrollSteps < 0 {
		c.ScrollSteps = 0
	}
	if c.MinTextLength <= 0 {
		c.MinTextLength = d.MinTextLength
	}
	return c
}
