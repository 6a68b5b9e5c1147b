package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/vibe-app-store/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"apps\":[]}"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	p := NewCompatibleProvider("openrouter", "secret", srv.URL, "google/gemini-2.5-flash")

	resp, err := p.Generate(context.Background(), llm.Request{Prompt: "ideas please", JSONMode: true}, "")
	require.NoError(t, err)

	assert.Equal(t, `{"apps":[]}`, resp.Content)
	assert.Equal(t, "google/gemini-2.5-flash", resp.Model)
	assert.Equal(t, 42, resp.TokensUsed)

	assert.Equal(t, "google/gemini-2.5-flash", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "ideas please", got.Messages[0].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestProvider_GenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewCompatibleProvider("openrouter", "bad", srv.URL, "m")

	_, err := p.Generate(context.Background(), llm.Request{Prompt: "x"}, "")
	assert.ErrorContains(t, err, "status 401")
}

func TestNewOpenRouterProvider_Defaults(t *testing.T) {
	p := NewOpenRouterProvider("key", "", "")
	assert.Equal(t, "openrouter", p.Name())
	assert.Equal(t, "google/gemini-2.5-flash", p.DefaultModel())
	assert.True(t, p.IsConfigured())
	assert.Equal(t, OpenRouterBaseURL, p.(*Provider).baseURL)
}
