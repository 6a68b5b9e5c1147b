package deepseek

import (
	"github.com/Rrens/vibe-app-store/internal/llm"
	"github.com/Rrens/vibe-app-store/internal/llm/openai"
)

const baseURL = "https://api.deepseek.com/v1"

// NewProvider creates a DeepSeek provider. DeepSeek speaks the OpenAI
// chat completions protocol, including json_object responses.
func NewProvider(apiKey, defaultModel string) llm.Provider {
	if defaultModel == "" {
		defaultModel = "deepseek-chat"
	}
	return &Provider{
		Provider: openai.NewCompatibleProvider("deepseek", apiKey, baseURL, defaultModel),
	}
}

// Provider implements llm.Provider for DeepSeek
type Provider struct {
	*openai.Provider
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"deepseek-chat",
		"deepseek-reasoner",
	}
}
