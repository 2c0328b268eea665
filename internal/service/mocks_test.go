package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/llm"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

// MockTranscriptStore mocks the TranscriptStore interface
type MockTranscriptStore struct {
	mock.Mock
}

func (m *MockTranscriptStore) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockTranscriptStore) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockTranscriptStore) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Conversation), args.Error(1)
}

func (m *MockTranscriptStore) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SaveMessage echoes the saved message when no explicit return is configured
func (m *MockTranscriptStore) SaveMessage(ctx context.Context, conversationID uuid.UUID, role domain.MessageRole, content string) (*domain.Message, error) {
	args := m.Called(ctx, conversationID, role, content)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if msg, ok := args.Get(0).(*domain.Message); ok && msg != nil {
		return msg, nil
	}
	return &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}, nil
}

func (m *MockTranscriptStore) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockTranscriptStore) UpdateMessageContent(ctx context.Context, messageID uuid.UUID, content string) error {
	args := m.Called(ctx, messageID, content)
	return args.Error(0)
}

func (m *MockTranscriptStore) GetReferenceDocument(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTranscriptStore) SaveReferenceDocument(ctx context.Context, content string) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func (m *MockTranscriptStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTranscriptStore) Close() error {
	return nil
}

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

type sinkEvent struct {
	Kind string
	Role domain.MessageRole
	Text string
}

// recordingSink captures everything a turn renders
type recordingSink struct {
	events []sinkEvent
}

func (s *recordingSink) Partial(text string) {
	s.events = append(s.events, sinkEvent{Kind: "partial", Text: text})
}

func (s *recordingSink) Final(role domain.MessageRole, text string) {
	s.events = append(s.events, sinkEvent{Kind: "final", Role: role, Text: text})
}

func (s *recordingSink) Notice(level tutor.NoticeLevel, text string) {
	s.events = append(s.events, sinkEvent{Kind: "notice:" + string(level), Text: text})
}

func (s *recordingSink) of(kind string) []sinkEvent {
	var out []sinkEvent
	for _, e := range s.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
