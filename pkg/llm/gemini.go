package llm

// GeminiBaseURL is Google's OpenAI-compatible endpoint for Gemini models.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// GeminiDefaultModel is used when no model is configured.
const GeminiDefaultModel = "gemini-2.5-flash"

// NewGeminiProvider creates a provider for Gemini through its
// OpenAI-compatible chat completions endpoint. cfg.BaseURL overrides the
// endpoint, which is mostly useful for tests and regional gateways.
func NewGeminiProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	return newChatCompletionsProvider("gemini", GeminiDefaultModel, cfg)
}
