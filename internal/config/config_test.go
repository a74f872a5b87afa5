package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "WXSCRAPE_API_KEY", "WXSCRAPE_PROVIDER"} {
		t.Setenv(k, "")
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	clearKeys(t)

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, "browser_state.json", cfg.SessionStatePath)
	assert.Equal(t, 20*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 500, cfg.MinTextLength)
	assert.Equal(t, "Universal_Monthly", cfg.BaseName)
	assert.Equal(t, "0 0 * * *", cfg.Schedule)
	assert.True(t, cfg.Headless)
	assert.True(t, cfg.HourlyIncludesPeriod)
	assert.Zero(t, cfg.MaxContentBytes())

	err = cfg.RequireAPIKey()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_DetectsProviderFromEnv(t *testing.T) {
	clearKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sk-ant-test", cfg.APIKey)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestLoad_ExplicitProviderUsesItsKey(t *testing.T) {
	clearKeys(t)
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")

	v := newViper()
	v.Set("provider", "openai")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "oa-key", cfg.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Model)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	clearKeys(t)
	t.Setenv("WXSCRAPE_API_KEY", "generic")
	t.Setenv("WXSCRAPE_MIN_TEXT_LENGTH", "200")
	t.Setenv("WXSCRAPE_NAVIGATION_TIMEOUT", "45s")
	t.Setenv("WXSCRAPE_HOURLY_PERIOD", "false")
	t.Setenv("WXSCRAPE_MAX_CONTENT_SIZE", "100KB")

	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "generic", cfg.APIKey)
	assert.Equal(t, 200, cfg.MinTextLength)
	assert.Equal(t, 45*time.Second, cfg.NavigationTimeout)
	assert.False(t, cfg.HourlyIncludesPeriod)
	assert.Equal(t, 100000, cfg.MaxContentBytes())
	assert.Equal(t, 100000, cfg.ExtractorConfig().MaxContentSize)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown provider", "provider", "ollama"},
		{"bad schedule", "schedule", "daily at midnight"},
		{"bad timezone", "timezone", "Mars/Olympus"},
		{"bad url", "url", "not a url"},
		{"negative min length", "min_text_length", -1},
		{"base name with slash", "base_name", "a/b"},
		{"bad content size", "max_content_size", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearKeys(t)
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearKeys(t)
	path := filepath.Join(t.TempDir(), ".wxscrape.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: https://www.example.com/id/palangka-raya/monthly
provider: anthropic
api_key: from-file
output_dir: out
schedule: "30 6 * * *"
timezone: Asia/Jakarta
`), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://www.example.com/id/palangka-raya/monthly", cfg.URL)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "out", cfg.Exporter().Dir)
	assert.Equal(t, "30 6 * * *", cfg.Schedule)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoadDotEnv(t *testing.T) {
	clearKeys(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=from-dotenv\n"), 0o644))

	// an empty but set variable is kept by godotenv, so unset it
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))
	t.Cleanup(func() { _ = os.Unsetenv("GEMINI_API_KEY") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("GEMINI_API_KEY"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestDerivedConfigs(t *testing.T) {
	clearKeys(t)
	v := newViper()
	v.Set("api_key", "k")
	v.Set("base_url", "https://proxy.example.com/v1")
	v.Set("llm_timeout", "30s")
	v.Set("scroll_steps", 2)
	v.Set("headless", false)

	cfg, err := Load(v)
	require.NoError(t, err)

	pc := cfg.ProviderConfig()
	assert.Equal(t, "k", pc.APIKey)
	assert.Equal(t, "https://proxy.example.com/v1", pc.BaseURL)
	assert.Equal(t, 30*time.Second, pc.Timeout)

	bc := cfg.BrowserConfig()
	assert.False(t, bc.Headless)
	assert.Equal(t, 2, bc.ScrollSteps)
	assert.NotEmpty(t, bc.MarkerXPath)

	assert.Equal(t, 30*time.Second, cfg.ExtractorConfig().Timeout)
}
