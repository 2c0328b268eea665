package tutor

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/llm"
)

// FeedbackAnalyzer decides whether a follow-up message calls for revising
// the guiding instruction
type FeedbackAnalyzer struct {
	provider llm.Provider
	params   CallParams
}

// NewFeedbackAnalyzer creates an analyzer backed by provider
func NewFeedbackAnalyzer(provider llm.Provider, params CallParams) *FeedbackAnalyzer {
	return &FeedbackAnalyzer{provider: provider, params: params}
}

// Analyze never fails. Errors yield FallbackFeedback, returned with the cause.
func (a *FeedbackAnalyzer) Analyze(ctx context.Context, currentContext, userMessage string) (FeedbackResult, error) {
	var result FeedbackResult
	if err := completeInto(ctx, a.provider, a.params, FeedbackPrompt(currentContext, userMessage), &result); err != nil {
		log.Warn().Err(err).Msg("feedback analysis failed, assuming progress")
		return FallbackFeedback, err
	}
	return result, nil
}
