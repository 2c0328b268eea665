package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/llm"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(store *MockTranscriptStore, provider *MockProvider) *ChatService {
	router := llm.NewRouter("mock")
	router.RegisterProvider(provider)
	return NewChatService(store, router, DefaultChatConfig())
}

// promptContaining matches a single-prompt completion request
func promptContaining(fragment string) interface{} {
	return mock.MatchedBy(func(req llm.Request) bool {
		return len(req.Messages) == 1 && strings.Contains(req.Messages[0].Content, fragment)
	})
}

// streams makes a Stream expectation deliver chunks in order
func streams(chunks ...string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		fn := args.Get(2).(llm.StreamFunc)
		for _, c := range chunks {
			if err := fn(ctx, c); err != nil {
				return
			}
		}
	}
}

func newConversation(title string) *domain.Conversation {
	now := time.Now()
	return &domain.Conversation{ID: uuid.New(), Title: title, CreatedAt: now, UpdatedAt: now}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "short", input: "Explain entropy", expected: "Explain entropy"},
		{name: "exactly fifty", input: strings.Repeat("a", 50), expected: strings.Repeat("a", 50)},
		{name: "sixty", input: strings.Repeat("b", 60), expected: strings.Repeat("b", 50) + "..."},
		{name: "multibyte", input: strings.Repeat("엔", 51), expected: strings.Repeat("엔", 50) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Title(tt.input))
		})
	}
}

func TestChatService_FirstTurnLearning(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	conv := newConversation("Explain entropy")

	store.On("CreateConversation", mock.Anything, "Explain entropy").Return(conv, nil).Once()
	store.On("GetReferenceDocument", mock.Anything).Return("", nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("Classify the intent")).
		Return(&llm.Response{Content: `{"intent": "Learning", "confidence": 0.95, "reason": "concept"}`}, nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("Generate a system prompt")).
		Return(&llm.Response{Content: "```json\n{\"analysis_content\": \"ANALYSIS\", \"design_content\": \"DESIGN\"}\n```"}, nil).Once()

	expectedInstruction := tutor.TeachingInstruction(tutor.Framework{Analysis: "ANALYSIS", Design: "DESIGN"})
	store.On("SaveMessage", mock.Anything, conv.ID, domain.RoleSystem, expectedInstruction).Return(nil, nil).Once()
	store.On("SaveMessage", mock.Anything, conv.ID, domain.RoleUser, "Explain entropy").Return(nil, nil).Once()
	provider.On("Stream", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return len(req.Messages) == 2 &&
			req.Messages[0].Role == llm.RoleSystem &&
			req.Messages[1].Content == "Explain entropy"
	}), mock.Anything).Run(streams("Entropy ", `is \(S\)`)).Return(&llm.Response{}, nil).Once()
	store.On("SaveMessage", mock.Anything, conv.ID, domain.RoleAssistant, `Entropy is \(S\)`).Return(nil, nil).Once()

	sess := tutor.NewSession()
	sink := &recordingSink{}

	result, err := svc.Submit(context.Background(), sess, "Explain entropy", sink)
	require.NoError(t, err)

	assert.Equal(t, OutcomeReplied, result.Outcome)
	assert.Equal(t, tutor.IntentLearning, result.Intent)
	assert.Equal(t, tutor.ModeInstructional, sess.Mode)
	assert.Equal(t, tutor.PhaseActive, sess.Phase)
	assert.True(t, sess.InstructionEstablished)
	require.NotNil(t, sess.ConversationID)
	assert.Equal(t, conv.ID, *sess.ConversationID)

	roles := make([]domain.MessageRole, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		roles = append(roles, m.Role)
	}
	if diff := cmp.Diff([]domain.MessageRole{domain.RoleSystem, domain.RoleUser, domain.RoleAssistant}, roles); diff != "" {
		t.Errorf("transcript roles mismatch (-want +got):\n%s", diff)
	}

	partials := sink.of("partial")
	require.Len(t, partials, 2)
	assert.Equal(t, "Entropy ▌", partials[0].Text)
	assert.Equal(t, `Entropy is \(S\)▌`, partials[1].Text)

	finals := sink.of("final")
	require.Len(t, finals, 2)
	assert.Equal(t, domain.RoleAssistant, finals[1].Role)
	assert.Equal(t, "Entropy is $S$", finals[1].Text)

	store.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestChatService_FirstTurnCasualLongTitle(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	input := strings.Repeat("x", 60)
	conv := newConversation(Title(input))

	store.On("CreateConversation", mock.Anything, strings.Repeat("x", 50)+"...").Return(conv, nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("Classify the intent")).
		Return(&llm.Response{Content: `{"intent": "Leisure", "confidence": 0.8, "reason": "chat"}`}, nil).Once()
	store.On("SaveMessage", mock.Anything, conv.ID, domain.RoleSystem, tutor.CasualInstruction).Return(nil, nil).Once()
	store.On("SaveMessage", mock.Anything, conv.ID, domain.RoleUser, input).Return(nil, nil).Once()
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(streams("hi")).Return(&llm.Response{}, nil).Once()
	store.On("SaveMessage", mock.Anything, conv.ID, domain.RoleAssistant, "hi").Return(nil, nil).Once()

	sess := tutor.NewSession()
	result, err := svc.Submit(context.Background(), sess, input, &recordingSink{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeReplied, result.Outcome)
	assert.Equal(t, tutor.ModeCasual, sess.Mode)
	store.AssertExpectations(t)
	provider.AssertNotCalled(t, "Complete", mock.Anything, promptContaining("Generate a system prompt"))
}

func TestChatService_ClassifierFallbackTakesLearningPath(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	conv := newConversation("What's up")

	store.On("CreateConversation", mock.Anything, "What's up").Return(conv, nil).Once()
	store.On("GetReferenceDocument", mock.Anything).Return("reference text", nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("Classify the intent")).
		Return(&llm.Response{Content: "no idea"}, nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("References: reference text")).
		Return(&llm.Response{Content: `{"analysis_content": "A", "design_content": "D"}`}, nil).Once()
	store.On("SaveMessage", mock.Anything, conv.ID, mock.Anything, mock.Anything).Return(nil, nil)
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(streams("ok")).Return(&llm.Response{}, nil).Once()

	sess := tutor.NewSession()
	sink := &recordingSink{}
	result, err := svc.Submit(context.Background(), sess, "What's up", sink)
	require.NoError(t, err)

	assert.Equal(t, tutor.IntentLearning, result.Intent)
	assert.Equal(t, tutor.ModeInstructional, sess.Mode)
	assert.Len(t, sink.of("notice:warning"), 1)
	provider.AssertExpectations(t)
}

func TestChatService_DraftFailureAborts(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	conv := newConversation("Explain entropy")

	store.On("CreateConversation", mock.Anything, "Explain entropy").Return(conv, nil).Once()
	store.On("GetReferenceDocument", mock.Anything).Return("", nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("Classify the intent")).
		Return(&llm.Response{Content: `{"intent": "Learning", "confidence": 0.9, "reason": "r"}`}, nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("Generate a system prompt")).
		Return(&llm.Response{Content: `{"analysis_content": "only analysis"}`}, nil).Once()
	store.On("DeleteConversation", mock.Anything, conv.ID).Return(nil).Once()

	sess := tutor.NewSession()
	sink := &recordingSink{}
	result, err := svc.Submit(context.Background(), sess, "Explain entropy", sink)
	require.NoError(t, err)

	assert.Equal(t, OutcomeAborted, result.Outcome)
	assert.ErrorIs(t, result.Err, tutor.ErrDraftFailed)
	assert.Equal(t, tutor.PhaseAborted, sess.Phase)
	assert.Nil(t, sess.ConversationID)
	assert.Empty(t, sess.Messages)
	assert.Equal(t, tutor.ModeUnset, sess.Mode)
	assert.False(t, sess.InstructionEstablished)
	assert.Len(t, sink.of("notice:error"), 1)

	store.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	provider.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestChatService_StreamFailureKeepsUserTurn(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	conv := newConversation("hello")

	store.On("CreateConversation", mock.Anything, "hello").Return(conv, nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("Classify the intent")).
		Return(&llm.Response{Content: `{"intent": "Leisure", "confidence": 0.9, "reason": "r"}`}, nil).Once()
	store.On("SaveMessage", mock.Anything, conv.ID, domain.RoleSystem, mock.Anything).Return(nil, nil).Once()
	store.On("SaveMessage", mock.Anything, conv.ID, domain.RoleUser, "hello").Return(nil, nil).Once()
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Run(streams("partial text")).Return(nil, errors.New("connection reset")).Once()

	sess := tutor.NewSession()
	sink := &recordingSink{}
	result, err := svc.Submit(context.Background(), sess, "hello", sink)
	require.NoError(t, err)

	assert.Equal(t, OutcomeStreamFailed, result.Outcome)
	assert.ErrorIs(t, result.Err, tutor.ErrStreamFailed)
	assert.Equal(t, tutor.PhaseActive, sess.Phase)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, domain.RoleUser, sess.Messages[1].Role)
	assert.Len(t, sink.of("notice:error"), 1)
	store.AssertNotCalled(t, "SaveMessage", mock.Anything, conv.ID, domain.RoleAssistant, mock.Anything)
}

func TestChatService_CancelledStreamDiscardsPartial(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	convID := uuid.New()
	sess := tutor.NewSession()
	sess.ConversationID = &convID
	sess.Mode = tutor.ModeCasual
	sess.Phase = tutor.PhaseActive
	sess.InstructionEstablished = true
	sess.Append(domain.Message{ID: uuid.New(), Role: domain.RoleSystem, Content: tutor.CasualInstruction})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store.On("SaveMessage", mock.Anything, convID, domain.RoleUser, "go on").Return(nil, nil).Once()
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		fn := args.Get(2).(llm.StreamFunc)
		_ = fn(ctx, "half a ")
		cancel()
		_ = fn(ctx, "sentence")
	}).Return(nil, context.Canceled).Once()

	sink := &recordingSink{}
	result, err := svc.Submit(ctx, sess, "go on", sink)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCancelled, result.Outcome)
	assert.Len(t, sink.of("partial"), 1)
	assert.Empty(t, sink.of("notice:error"))
	require.Len(t, sess.Messages, 2)
	store.AssertNotCalled(t, "SaveMessage", mock.Anything, convID, domain.RoleAssistant, mock.Anything)
}

// instructionalSession builds an active instructional session with the given
// contents after the guiding instruction
func instructionalSession(convID uuid.UUID, contents ...string) *tutor.Session {
	sess := tutor.NewSession()
	sess.ConversationID = &convID
	sess.Mode = tutor.ModeInstructional
	sess.Phase = tutor.PhaseActive
	sess.InstructionEstablished = true
	sess.Append(domain.Message{ID: uuid.New(), ConversationID: convID, Role: domain.RoleSystem, Content: "Guide.\n"})
	for i, c := range contents {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		sess.Append(domain.Message{ID: uuid.New(), ConversationID: convID, Role: role, Content: c})
	}
	return sess
}

func TestChatService_FeedbackContextWindow(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	convID := uuid.New()
	sess := instructionalSession(convID, "q1", "a1", "q2", "a2")

	store.On("SaveMessage", mock.Anything, convID, domain.RoleUser, "q3").Return(nil, nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("Current Learning Context: a1\nq2\na2\n\nUser Feedback: q3\n")).
		Return(&llm.Response{Content: `{"status": "progress", "reason": "fine"}`}, nil).Once()
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(streams("a3")).Return(&llm.Response{}, nil).Once()
	store.On("SaveMessage", mock.Anything, convID, domain.RoleAssistant, "a3").Return(nil, nil).Once()

	result, err := svc.Submit(context.Background(), sess, "q3", &recordingSink{})
	require.NoError(t, err)

	assert.Equal(t, OutcomeReplied, result.Outcome)
	assert.False(t, result.FeedbackApplied)
	assert.Equal(t, "Guide.\n", sess.Messages[0].Content)
	store.AssertNotCalled(t, "UpdateMessageContent", mock.Anything, mock.Anything, mock.Anything)
	provider.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestChatService_FeedbackShortContext(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	convID := uuid.New()
	sess := instructionalSession(convID, "q1")

	store.On("SaveMessage", mock.Anything, convID, mock.Anything, mock.Anything).Return(nil, nil)
	provider.On("Complete", mock.Anything, promptContaining("Current Learning Context: Guide.\n\nq1\n\nUser Feedback: more")).
		Return(&llm.Response{Content: `{"status": "progress", "reason": "fine"}`}, nil).Once()
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(streams("ok")).Return(&llm.Response{}, nil).Once()

	_, err := svc.Submit(context.Background(), sess, "more", &recordingSink{})
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestChatService_FeedbackAmendmentAndDuplicateGuard(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	convID := uuid.New()
	sess := instructionalSession(convID, "q1", "a1")
	instructionID := sess.Messages[0].ID

	store.On("SaveMessage", mock.Anything, convID, domain.RoleUser, "too abstract").Return(nil, nil).Once()
	provider.On("Complete", mock.Anything, promptContaining("User Feedback: too abstract")).
		Return(&llm.Response{Content: `{"status": "evaluation", "reason": "lost", "suggested_adjustment": "Use concrete examples\n\nShorter answers"}`}, nil).Once()
	store.On("UpdateMessageContent", mock.Anything, instructionID, "Guide.\n- Use concrete examples\n- Shorter answers").Return(nil).Once()
	provider.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return len(req.Messages) == 4 && strings.HasSuffix(req.Messages[0].Content, "- Shorter answers")
	})).Return(&llm.Response{Content: "Same reply"}, nil).Once()
	store.On("SaveMessage", mock.Anything, convID, domain.RoleAssistant, "Same reply").Return(nil, nil).Once()
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(streams("Same ", "reply")).Return(&llm.Response{}, nil).Once()

	sink := &recordingSink{}
	result, err := svc.Submit(context.Background(), sess, "too abstract", sink)
	require.NoError(t, err)

	assert.Equal(t, OutcomeReplied, result.Outcome)
	assert.True(t, result.FeedbackApplied)
	assert.Equal(t, "Guide.\n- Use concrete examples\n- Shorter answers", sess.Messages[0].Content)

	assistants := 0
	for _, m := range sess.Messages {
		if m.Role == domain.RoleAssistant && m.Content == "Same reply" {
			assistants++
		}
	}
	assert.Equal(t, 1, assistants)
	assert.Len(t, sink.of("notice:info"), 1)

	store.AssertExpectations(t)
	provider.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "SaveMessage", 2)
}

func TestChatService_CasualSkipsFeedback(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	convID := uuid.New()
	sess := instructionalSession(convID, "q1", "a1")
	sess.Mode = tutor.ModeCasual

	store.On("SaveMessage", mock.Anything, convID, mock.Anything, mock.Anything).Return(nil, nil)
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(streams("ok")).Return(&llm.Response{}, nil).Once()

	_, err := svc.Submit(context.Background(), sess, "next", &recordingSink{})
	require.NoError(t, err)
	provider.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestChatService_PersistenceErrorPropagates(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	convID := uuid.New()
	sess := instructionalSession(convID, "q1", "a1")

	store.On("SaveMessage", mock.Anything, convID, domain.RoleUser, "next").Return(nil, domain.ErrNotFound).Once()

	_, err := svc.Submit(context.Background(), sess, "next", &recordingSink{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	provider.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_EmptyInput(t *testing.T) {
	svc := newTestService(new(MockTranscriptStore), new(MockProvider))
	_, err := svc.Submit(context.Background(), tutor.NewSession(), "  \n", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestChatService_ReloadAndReplay(t *testing.T) {
	store := new(MockTranscriptStore)
	provider := new(MockProvider)
	svc := newTestService(store, provider)

	conv := newConversation("Explain entropy")
	stored := []domain.Message{
		{ID: uuid.New(), ConversationID: conv.ID, Role: domain.RoleSystem, Content: "You are an AI tutor ..."},
		{ID: uuid.New(), ConversationID: conv.ID, Role: domain.RoleUser, Content: "Explain entropy"},
		{ID: uuid.New(), ConversationID: conv.ID, Role: domain.RoleAssistant, Content: `It is \[S = k \ln W\]`},
	}
	store.On("GetConversation", mock.Anything, conv.ID).Return(conv, nil)
	store.On("ListMessages", mock.Anything, conv.ID).Return(stored, nil)

	sess := tutor.NewSession()
	require.NoError(t, svc.Reload(context.Background(), sess, conv.ID))

	assert.Equal(t, tutor.PhaseReloaded, sess.Phase)
	assert.Equal(t, tutor.ModeInstructional, sess.Mode)
	assert.True(t, sess.InstructionEstablished)
	assert.True(t, sess.SkipNextInference)
	assert.Len(t, sess.Messages, 3)

	t.Run("submit right after reload is skipped once", func(t *testing.T) {
		result, err := svc.Submit(context.Background(), sess, "stale input", &recordingSink{})
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, result.Outcome)
		assert.False(t, sess.SkipNextInference)
		assert.Equal(t, tutor.PhaseActive, sess.Phase)
		provider.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "SaveMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("replay renders history once", func(t *testing.T) {
		require.NoError(t, svc.Reload(context.Background(), sess, conv.ID))
		sink := &recordingSink{}
		svc.Replay(sess, sink)

		finals := sink.of("final")
		require.Len(t, finals, 2)
		assert.Equal(t, "It is $$S = k \\ln W$$", finals[1].Text)
		assert.False(t, sess.SkipNextInference)
		assert.Equal(t, tutor.PhaseActive, sess.Phase)
	})
}

func TestChatService_ReloadModes(t *testing.T) {
	tests := []struct {
		name         string
		messages     []domain.Message
		expectedMode tutor.Mode
		expectedLen  int
	}{
		{
			name: "casual instruction",
			messages: []domain.Message{
				{Role: domain.RoleSystem, Content: tutor.CasualInstruction},
				{Role: domain.RoleUser, Content: "hi"},
			},
			expectedMode: tutor.ModeCasual,
			expectedLen:  2,
		},
		{
			name: "no instruction stored",
			messages: []domain.Message{
				{Role: domain.RoleUser, Content: "hi"},
				{Role: domain.RoleAssistant, Content: "hello"},
			},
			expectedMode: tutor.ModeCasual,
			expectedLen:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockTranscriptStore)
			svc := newTestService(store, new(MockProvider))
			conv := newConversation("c")
			store.On("GetConversation", mock.Anything, conv.ID).Return(conv, nil)
			store.On("ListMessages", mock.Anything, conv.ID).Return(tt.messages, nil)

			sess := tutor.NewSession()
			require.NoError(t, svc.Reload(context.Background(), sess, conv.ID))
			assert.Equal(t, tt.expectedMode, sess.Mode)
			assert.Len(t, sess.Messages, tt.expectedLen)
			assert.Equal(t, domain.RoleSystem, sess.Messages[0].Role)
		})
	}
}

func TestChatService_ReloadUnknownConversation(t *testing.T) {
	store := new(MockTranscriptStore)
	svc := newTestService(store, new(MockProvider))
	id := uuid.New()
	store.On("GetConversation", mock.Anything, id).Return(nil, domain.ErrNotFound)

	sess := tutor.NewSession()
	err := svc.Reload(context.Background(), sess, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, tutor.PhaseEmpty, sess.Phase)
}

func TestChatService_SearchConversations(t *testing.T) {
	store := new(MockTranscriptStore)
	svc := newTestService(store, new(MockProvider))

	conversations := []domain.Conversation{
		{ID: uuid.New(), Title: "Explain entropy"},
		{ID: uuid.New(), Title: "Write a poem"},
		{ID: uuid.New(), Title: "Entropy in information theory"},
	}
	store.On("ListConversations", mock.Anything).Return(conversations, nil)

	all, err := svc.SearchConversations(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.SearchConversations(context.Background(), "entropy")
	require.NoError(t, err)
	require.Len(t, found, 2)
	for _, c := range found {
		assert.Contains(t, strings.ToLower(c.Title), "entropy")
	}
}
