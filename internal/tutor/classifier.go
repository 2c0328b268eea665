package tutor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/llm"
)

// IntentClassifier labels an opening message with one of the five intents
type IntentClassifier struct {
	provider llm.Provider
	params   CallParams
}

// NewIntentClassifier creates a classifier backed by provider
func NewIntentClassifier(provider llm.Provider, params CallParams) *IntentClassifier {
	return &IntentClassifier{provider: provider, params: params}
}

// Classify never fails. Service and parse errors yield FallbackClassification
// and are returned alongside it so callers can surface a notice.
func (c *IntentClassifier) Classify(ctx context.Context, input string) (Classification, error) {
	var result Classification
	if err := completeInto(ctx, c.provider, c.params, IntentPrompt(input), &result); err != nil {
		log.Warn().Err(err).Msg("intent classification failed, using fallback")
		return FallbackClassification, err
	}

	log.Debug().
		Str("intent", string(result.Intent)).
		Float64("confidence", result.Confidence).
		Msg("classified intent")

	return result, nil
}

// completeInto runs a single-prompt completion and decodes its structured payload
func completeInto(ctx context.Context, provider llm.Provider, params CallParams, prompt string, v any) error {
	resp, err := provider.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Model:       params.Model,
		Temperature: llm.Temperature(params.Temperature),
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}
	return llm.DecodePayload(resp.Content, v)
}
