package tutor

import (
	"context"
	"fmt"

	"github.com/Rrens/tutor-chat/internal/llm"
)

// FrameworkDrafter produces the analysis and design stages for a learning request
type FrameworkDrafter struct {
	provider   llm.Provider
	params     CallParams
	background Background
}

// NewFrameworkDrafter creates a drafter backed by provider
func NewFrameworkDrafter(provider llm.Provider, params CallParams, bg Background) *FrameworkDrafter {
	return &FrameworkDrafter{provider: provider, params: params, background: bg}
}

// Draft returns an ErrDraftFailed wrapped error on any service or parse failure
func (d *FrameworkDrafter) Draft(ctx context.Context, request, reference string) (*Framework, error) {
	var f Framework
	if err := completeInto(ctx, d.provider, d.params, DraftPrompt(request, reference, d.background), &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDraftFailed, err)
	}
	return &f, nil
}
