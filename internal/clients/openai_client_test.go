package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spacesedan/honestreviews/config"
	"github.com/spacesedan/honestreviews/internal/insights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatCompletion = `{
 "id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"llama-3.3-70b-versatile",
 "choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"conclusion\":\"ok\"}"}}],
 "usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}
}`

func TestOpenAIClient_Generate(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletion))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(config.LLMConfig{
		Provider: config.ProviderGroq,
		APIKey:   "gsk-test",
		BaseURL:  server.URL,
		Model:    config.DEFAULT_GROQ_MODEL,
	})
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), "PROMPT", insights.GenerateOptions{
		ResponseFormat:  insights.ResponseFormatJSON,
		Temperature:     0.2,
		MaxOutputTokens: 2048,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"conclusion":"ok"}`, text)
	assert.Equal(t, config.DEFAULT_GROQ_MODEL, body["model"])
	assert.EqualValues(t, 2048, body["max_tokens"])
	assert.InDelta(t, 0.2, body["temperature"], 0.0001)
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "PROMPT", messages[0].(map[string]any)["content"])

	assert.Equal(t, OPENAI_INPUT_BUDGET, client.InputBudget())
	assert.Equal(t, "groq:llama-3.3-70b-versatile", client.Name())
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(config.LLMConfig{Provider: config.ProviderOpenAI, APIKey: "k", BaseURL: server.URL, Model: "m"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "PROMPT", insights.GenerateOptions{})
	assert.Error(t, err)
}

func TestNewBackend_MissingKey(t *testing.T) {
	_, err := NewBackend(context.Background(), config.LLMConfig{Provider: config.ProviderGroq})
	assert.Error(t, err)

	_, err = NewBackend(context.Background(), config.LLMConfig{Provider: config.ProviderGemini})
	assert.Error(t, err)
}
