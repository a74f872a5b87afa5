package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider("nope", ProviderConfig{APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic, gemini, openai")
}

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	for _, name := range AvailableProviders() {
		_, err := NewProvider(name, ProviderConfig{})
		assert.Error(t, err, name)
	}
}

func TestNewProvider_DefaultModels(t *testing.T) {
	for _, name := range AvailableProviders() {
		p, err := NewProvider(name, ProviderConfig{APIKey: "k"})
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
		assert.Equal(t, GetDefaultModel(name), p.Model(), name)
	}
}

func TestDetectProvider(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	name, key := DetectProvider()
	assert.Empty(t, name)
	assert.Empty(t, key)

	t.Setenv("OPENAI_API_KEY", "o-key")
	name, key = DetectProvider()
	assert.Equal(t, "openai", name)
	assert.Equal(t, "o-key", key)

	t.Setenv("GEMINI_API_KEY", "g-key")
	name, key = DetectProvider()
	assert.Equal(t, "gemini", name)
	assert.Equal(t, "g-key", key)
	assert.Equal(t, "g-key", APIKeyFromEnv("gemini"))
	assert.Equal(t, "GEMINI_API_KEY", APIKeyEnv("gemini"))
}

func TestRequiredFields(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, requiredFields(map[string]any{"required": []string{"a", "b"}}))
	assert.Equal(t, []string{"a"}, requiredFields(map[string]any{"required": []any{"a", 3}}))
	assert.Nil(t, requiredFields(map[string]any{}))
}

func TestGeminiProvider_Execute(t *testing.T) {
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gemini-2.5-flash",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "{\"parent_location\":\"N/A\"}"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
		}`)
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	resp, err := p.Execute(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "hello"}},
		Temperature: 0,
		JSONSchema:  map[string]any{"type": "object", "properties": map[string]any{}},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"parent_location":"N/A"}`, resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 5}, resp.Usage)

	require.NotNil(t, captured)
	assert.Equal(t, "gemini-2.5-flash", captured["model"])
	assert.EqualValues(t, 0, captured["temperature"])
	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok, "response_format should be sent")
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAIProvider_ExecuteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "k", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai API error")
}
