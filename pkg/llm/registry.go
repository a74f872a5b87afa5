package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ProviderFactory creates providers from config.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// DefaultModels maps provider names to their default models.
var DefaultModels = map[string]string{
	"gemini":    GeminiDefaultModel,
	"anthropic": "claude-sonnet-4-20250514",
	"openai":    "gpt-4o",
}

var registry = map[string]ProviderFactory{}

func init() {
	RegisterProvider("gemini", func(cfg ProviderConfig) (Provider, error) {
		return NewGeminiProvider(cfg)
	})
	RegisterProvider("anthropic", func(cfg ProviderConfig) (Provider, error) {
		return NewAnthropicProvider(cfg)
	})
	RegisterProvider("openai", func(cfg ProviderConfig) (Provider, error) {
		return NewOpenAIProvider(cfg)
	})
}

// NewProvider creates a provider by name.
func NewProvider(name string, cfg ProviderConfig) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s (available: %s)", name, strings.Join(AvailableProviders(), ", "))
	}
	return factory(cfg)
}

// RegisterProvider adds a custom provider factory.
func RegisterProvider(name string, factory ProviderFactory) {
	registry[name] = factory
}

// AvailableProviders returns the registered provider names, sorted.
func AvailableProviders() []string {
	providers := make([]string, 0, len(registry))
	for name := range registry {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}

// providerEnvKeys maps provider names to their API key environment variables.
var providerEnvKeys = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
}

// detectOrder is the priority DetectProvider checks keys in.
var detectOrder = []string{"gemini", "anthropic", "openai"}

// DetectProvider picks a provider from the API keys in the environment.
// Priority: GEMINI_API_KEY > ANTHROPIC_API_KEY > OPENAI_API_KEY. It returns
// empty strings when no key is set.
func DetectProvider() (provider string, apiKey string) {
	for _, name := range detectOrder {
		if key := os.Getenv(providerEnvKeys[name]); key != "" {
			return name, key
		}
	}
	return "", ""
}

// GetDefaultModel returns the default model for a provider.
func GetDefaultModel(provider string) string {
	if model, ok := DefaultModels[provider]; ok {
		return model
	}
	return ""
}

// IsRegistered returns true if a provider is registered.
func IsRegistered(name string) bool {
	_, ok := registry[name]
	return ok
}

// APIKeyEnv returns the environment variable holding the provider's key.
func APIKeyEnv(provider string) string {
	return providerEnvKeys[provider]
}

// APIKeyFromEnv reads the provider's API key from the environment.
func APIKeyFromEnv(provider string) string {
	if envKey, ok := providerEnvKeys[provider]; ok {
		return os.Getenv(envKey)
	}
	return ""
}
