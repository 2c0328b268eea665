package tutor

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/tutor-chat/internal/llm"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string              { return "mock" }
func (m *MockProvider) AvailableModels() []string { return []string{"mock-model"} }
func (m *MockProvider) DefaultModel() string      { return "mock-model" }
func (m *MockProvider) IsConfigured() bool        { return true }

func (m *MockProvider) Validate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

func (m *MockProvider) Stream(ctx context.Context, req llm.Request, fn llm.StreamFunc) (*llm.Response, error) {
	args := m.Called(ctx, req, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

func reply(content string) *llm.Response {
	return &llm.Response{Content: content}
}
