package extractor

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmylchreest/wxscrape/pkg/forecast"
	"github.com/jmylchreest/wxscrape/pkg/schema"
)

// Config holds the model-call settings for a Client.
type Config struct {
	// Temperature for model responses. Zero keeps extraction deterministic.
	Temperature float64

	// MaxTokens for model responses (default: 16384).
	MaxTokens int

	// MaxContentSize limits page text in bytes (0 = unlimited).
	MaxContentSize int

	// Timeout bounds the single model call (default: 120s).
	Timeout time.Duration

	// StrictMode enables strict JSON schema validation in the API request.
	// Only some OpenAI models accept it.
	StrictMode bool

	// BreakerFailures is the number of consecutive transport failures
	// that open the circuit (default: 3).
	BreakerFailures uint32

	// BreakerCooldown is how long an open circuit rejects calls before
	// letting a probe through (default: 30m).
	BreakerCooldown time.Duration
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		Temperature:     0,
		MaxTokens:       16384,
		Timeout:         120 * time.Second,
		BreakerFailures: 3,
		BreakerCooldown: 30 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = d.BreakerFailures
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = d.BreakerCooldown
	}
	return c
}

// documentSchema is the contract the model's reply must satisfy.
var documentSchema = schema.MustNew[forecast.Document](
	schema.WithDescription("Weather forecast data extracted from one page. Daily, hourly and monthly forecasts are independent lists."),
)

// instructions is the fixed zero-shot task description sent ahead of the
// field guide and the page text.
const instructions = `You are a weather data extraction engine. Process the full text of a web page and map it onto the hierarchical JSON schema below.

Critical instructions (multiple time forecasts):
1. Identify the parent location (city, province or area) and put it in 'parent_location'.
2. Extract EVERY kind of weather forecast found on the page into its matching field.
3. Daily forecasts: if present, put them in 'daily_by_location', one item per city or regency. This includes multi-location tables and single-location daily summaries.
4. Hourly forecasts: if present, extract them and GROUP the hourly entries by day (e.g. Thursday, Friday) into 'hourly_by_day'.
5. Monthly forecasts: if present, extract them into 'monthly_entries'.
6. If a kind of forecast is not found, its list MUST be empty [].
7. If any other field is not found, set its value to 'N/A'.

Respond with ONLY valid JSON matching the schema. No explanations.`

// BuildPrompt creates the single user message for one extraction.
func BuildPrompt(pageText, sourceURL string, maxContentSize int) string {
	var prompt strings.Builder

	prompt.WriteString(instructions)
	prompt.WriteString("\n\n")
	prompt.WriteString(documentSchema.ToPromptDescription())
	prompt.WriteString("\n--- Target URL ---\n")
	prompt.WriteString(sourceURL)
	prompt.WriteString("\n--- Full raw text of the web page ---\n")
	prompt.WriteString(TruncateContent(pageText, maxContentSize))
	prompt.WriteString("\n")

	return prompt.String()
}

// TruncateContent limits content size to avoid token limits.
// maxLen of 0 means no limit.
func TruncateContent(content string, maxLen int) string {
	if maxLen <= 0 || len(content) <= maxLen {
		return content
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "\n\n[Content truncated due to length...]"
}

// StripMarkdownCodeBlock removes markdown code block wrappers from JSON responses.
// Some models wrap their JSON output in ```json ... ``` blocks.
func StripMarkdownCodeBlock(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}

	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
