// Package providers registers every supported language-model backend.
package providers

import (
	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/config"
	"github.com/Rrens/tutor-chat/internal/llm"
	"github.com/Rrens/tutor-chat/internal/llm/anthropic"
	"github.com/Rrens/tutor-chat/internal/llm/deepseek"
	"github.com/Rrens/tutor-chat/internal/llm/gemini"
	"github.com/Rrens/tutor-chat/internal/llm/ollama"
	"github.com/Rrens/tutor-chat/internal/llm/openai"
)

// NewRouter registers all providers. Those without a server-side key are
// still listed so sessions can supply their own key through the factories.
func NewRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	oa := openai.NewCompatible(openai.Options{
		Name:         "openai",
		APIKey:       cfg.OpenAI.APIKey,
		DefaultModel: cfg.OpenAI.Model,
		BaseURL:      cfg.OpenAI.BaseURL,
	})
	router.RegisterProvider(oa)
	router.RegisterFactory(oa.Name(), openai.Factory(oa))

	ds := deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model)
	router.RegisterProvider(ds)
	router.RegisterFactory(ds.Name(), openai.Factory(ds))

	an := anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	router.RegisterProvider(an)
	router.RegisterFactory(an.Name(), anthropic.Factory(an))

	gm := gemini.NewProvider(cfg.Gemini.APIKey, cfg.Gemini.Model)
	router.RegisterProvider(gm)
	router.RegisterFactory(gm.Name(), gemini.Factory(gm))

	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		ol := ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel)
		router.RegisterProvider(ol)
		router.RegisterFactory(ol.Name(), ollama.Factory(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}

	for _, name := range router.ListProviders() {
		log.Info().Str("provider", name).Msg("LLM provider ready")
	}
	return router
}
