package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/tutor-chat/internal/config"
)

func TestNewRouter(t *testing.T) {
	router := NewRouter(config.LLMConfig{
		DefaultProvider: "openai",
		OpenAI:          config.OpenAIConfig{APIKey: "sk-server"},
		Ollama:          config.OllamaConfig{Host: "http://localhost:11434"},
	})

	assert.Equal(t, []string{"ollama", "openai"}, router.ListProviders())

	infos := router.GetProvidersInfo()
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.ElementsMatch(t, []string{"anthropic", "deepseek", "gemini", "ollama", "openai"}, names)

	// No server key, but a session key makes it usable
	_, err := router.GetProvider("anthropic")
	assert.Error(t, err)

	p, err := router.GetProviderWithConfig("anthropic", map[string]any{"api_key": "sk-ant-user"})
	require.NoError(t, err)
	assert.True(t, p.IsConfigured())

	p, err = router.GetProviderWithConfig("ollama", map[string]any{"model": "mistral"})
	require.NoError(t, err)
	assert.Equal(t, "mistral", p.DefaultModel())
}
