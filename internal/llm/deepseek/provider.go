package deepseek

import (
	"github.com/Rrens/tutor-chat/internal/llm/openai"
)

const baseURL = "https://api.deepseek.com/v1"

// NewProvider creates a new DeepSeek provider. DeepSeek serves the OpenAI
// chat completions API, so the OpenAI provider is reused with its own base URL.
func NewProvider(apiKey, defaultModel string) *openai.Provider {
	if defaultModel == "" {
		defaultModel = "deepseek-chat"
	}
	return openai.NewCompatible(openai.Options{
		Name:         "deepseek",
		APIKey:       apiKey,
		DefaultModel: defaultModel,
		BaseURL:      baseURL,
		Models: []string{
			"deepseek-chat",
			"deepseek-reasoner",
		},
	})
}
