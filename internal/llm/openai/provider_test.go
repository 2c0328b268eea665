package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/Rrens/tutor-chat/internal/llm"
)

func TestNewCompatibleDefaults(t *testing.T) {
	p := NewCompatible(Options{})
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4o-mini", p.DefaultModel())
	assert.NotEmpty(t, p.AvailableModels())
	assert.False(t, p.IsConfigured())
}

func TestFactory(t *testing.T) {
	base := NewCompatible(Options{Name: "deepseek", BaseURL: "https://example.test/v1", DefaultModel: "deepseek-chat"})

	_, err := Factory(base)(map[string]any{})
	assert.Error(t, err)

	p, err := Factory(base)(map[string]any{"api_key": "sk-user", "model": "deepseek-reasoner"})
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p.Name())
	assert.Equal(t, "deepseek-reasoner", p.DefaultModel())
	assert.True(t, p.IsConfigured())
}

func TestValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	good := NewCompatible(Options{APIKey: "good", BaseURL: srv.URL})
	assert.NoError(t, good.Validate(context.Background()))

	bad := NewCompatible(Options{APIKey: "bad", BaseURL: srv.URL})
	assert.Error(t, bad.Validate(context.Background()))
}

func TestToMessageContent(t *testing.T) {
	out := toMessageContent([]llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
	})
	require.Len(t, out, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, out[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, out[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, out[2].Role)
}
