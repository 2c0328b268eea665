// Package app wires configuration into the running components shared by the
// HTTP server and the terminal client.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/config"
	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/llm"
	"github.com/Rrens/tutor-chat/internal/llm/providers"
	"github.com/Rrens/tutor-chat/internal/repository"
	"github.com/Rrens/tutor-chat/internal/repository/redis"
	"github.com/Rrens/tutor-chat/internal/service"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

// App holds the components built from one configuration
type App struct {
	Config    *config.Config
	Store     domain.TranscriptStore
	LLMRouter *llm.Router
	Chat      *service.ChatService
	// Limiter is nil when Redis is disabled
	Limiter *redis.RateLimiter

	redis *redis.Client
}

// New migrates and opens the store, connects Redis when enabled and builds
// the chat service
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := repository.Migrate(ctx, cfg.Storage); err != nil {
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	store, err := repository.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a := &App{Config: cfg, Store: store}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redis = client
		a.Store = redis.NewReferenceCachedStore(store, client)
		a.Limiter = redis.NewRateLimiter(client, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)
	} else {
		log.Info().Msg("Redis disabled, rate limiting and reference caching are off")
	}

	a.LLMRouter = providers.NewRouter(cfg.LLM)
	a.Chat = service.NewChatService(a.Store, a.LLMRouter, ChatConfig(cfg.Tutor))

	if err := a.Chat.BootstrapReference(ctx, cfg.Tutor.ReferenceDocumentPath); err != nil {
		log.Warn().Err(err).Msg("failed to bootstrap reference document")
	}

	return a, nil
}

// ChatConfig maps the tutor section of the configuration onto chat settings
func ChatConfig(cfg config.TutorConfig) service.ChatConfig {
	return service.ChatConfig{
		Classifier: callParams(cfg.Classifier),
		Drafter:    callParams(cfg.Drafter),
		Analyzer:   callParams(cfg.Analyzer),
		Amendment:  callParams(cfg.Amendment),
		Reply:      callParams(cfg.Reply),
		Background: tutor.Background{
			Learner:     cfg.LearnerBackground,
			Environment: cfg.LearningEnvironment,
		},
	}
}

func callParams(c config.CallConfig) tutor.CallParams {
	return tutor.CallParams{Model: c.Model, Temperature: c.Temperature, MaxTokens: c.MaxTokens}
}

// Close releases the store and the Redis connection
func (a *App) Close() error {
	var firstErr error
	if err := a.Store.Close(); err != nil {
		firstErr = err
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
