package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/llm"
	"github.com/Rrens/tutor-chat/internal/notation"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

// TitleMaxRunes bounds a conversation title taken from the opening message
const TitleMaxRunes = 50

// ErrEmptyInput is returned when a turn carries no text
var ErrEmptyInput = errors.New("message content is empty")

// Outcome tags how a turn ended
type Outcome string

const (
	OutcomeReplied      Outcome = "replied"
	OutcomeAborted      Outcome = "aborted"
	OutcomeStreamFailed Outcome = "stream_failed"
	OutcomeCancelled    Outcome = "cancelled"
	OutcomeSkipped      Outcome = "skipped"
)

// TurnResult describes a finished turn. Err carries the cause of an aborted
// or failed turn; persistence failures are returned as errors instead.
type TurnResult struct {
	Outcome         Outcome      `json:"outcome"`
	ConversationID  *uuid.UUID   `json:"conversation_id,omitempty"`
	Intent          tutor.Intent `json:"intent,omitempty"`
	Mode            tutor.Mode   `json:"mode,omitempty"`
	FeedbackApplied bool         `json:"feedback_applied"`
	Reply           string       `json:"reply,omitempty"`
	Err             error        `json:"-"`
}

// ChatConfig holds the sampling settings for each model call
type ChatConfig struct {
	Classifier tutor.CallParams
	Drafter    tutor.CallParams
	Analyzer   tutor.CallParams
	Amendment  tutor.CallParams
	Reply      tutor.CallParams
	Background tutor.Background
}

// DefaultChatConfig returns the settings the tutor was tuned with
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Classifier: tutor.CallParams{Temperature: 0.3, MaxTokens: 500},
		Drafter:    tutor.CallParams{Temperature: 0.7, MaxTokens: 2000},
		Analyzer:   tutor.CallParams{Temperature: 0.3, MaxTokens: 1000},
		Amendment:  tutor.CallParams{Temperature: 0.7, MaxTokens: 2000},
	}
}

// ChatService drives the conversation state machine of a tutor session
type ChatService struct {
	store     domain.TranscriptStore
	llmRouter *llm.Router
	cfg       ChatConfig
}

// NewChatService creates a new chat service
func NewChatService(store domain.TranscriptStore, llmRouter *llm.Router, cfg ChatConfig) *ChatService {
	return &ChatService{
		store:     store,
		llmRouter: llmRouter,
		cfg:       cfg,
	}
}

// Title derives a conversation title from the opening message
func Title(input string) string {
	if utf8.RuneCountInString(input) <= TitleMaxRunes {
		return input
	}
	runes := []rune(input)
	return string(runes[:TitleMaxRunes]) + "..."
}

// Submit processes one user message. A session freshly reloaded from storage
// skips inference exactly once.
func (s *ChatService) Submit(ctx context.Context, sess *tutor.Session, input string, sink tutor.Sink) (*TurnResult, error) {
	if sink == nil {
		sink = tutor.DiscardSink{}
	}

	if sess.SkipNextInference {
		sess.SkipNextInference = false
		if sess.Phase == tutor.PhaseReloaded {
			sess.Phase = tutor.PhaseActive
		}
		return &TurnResult{Outcome: OutcomeSkipped, ConversationID: sess.ConversationID, Mode: sess.Mode}, nil
	}

	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	provider, err := s.llmRouter.GetProviderWithConfig(sess.LLM.Provider, sess.LLM.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM provider: %w", err)
	}

	if sess.Phase == tutor.PhaseAborted {
		sess.Reset()
	}

	if sess.IsEmpty() {
		return s.firstTurn(ctx, sess, provider, input, sink)
	}
	return s.followUp(ctx, sess, provider, input, sink)
}

func (s *ChatService) firstTurn(ctx context.Context, sess *tutor.Session, provider llm.Provider, input string, sink tutor.Sink) (*TurnResult, error) {
	sess.Phase = tutor.PhaseAwaitingFramework

	conv, err := s.store.CreateConversation(ctx, Title(input))
	if err != nil {
		sess.Reset()
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	sess.ConversationID = &conv.ID

	result := &TurnResult{ConversationID: &conv.ID}

	classification, err := tutor.NewIntentClassifier(provider, s.cfg.Classifier).Classify(ctx, input)
	if err != nil {
		sink.Notice(tutor.NoticeWarning, "Could not classify your request, continuing as a learning session.")
	}
	result.Intent = classification.Intent

	instruction := tutor.CasualInstruction
	mode := tutor.ModeCasual

	if classification.Intent == tutor.IntentLearning {
		reference, err := s.store.GetReferenceDocument(ctx)
		if err != nil {
			s.abort(ctx, sess, conv.ID)
			return nil, fmt.Errorf("failed to load reference document: %w", err)
		}

		framework, err := tutor.NewFrameworkDrafter(provider, s.cfg.Drafter, s.cfg.Background).Draft(ctx, input, reference)
		if err != nil {
			log.Error().Err(err).Str("conversation_id", conv.ID.String()).Msg("framework drafting failed")
			sink.Notice(tutor.NoticeError, "Failed to build the instructional framework. Please send your request again.")
			s.abort(ctx, sess, conv.ID)
			result.Outcome = OutcomeAborted
			result.ConversationID = nil
			result.Err = err
			return result, nil
		}

		instruction = tutor.TeachingInstruction(*framework)
		mode = tutor.ModeInstructional
	}

	sysMsg, err := s.store.SaveMessage(ctx, conv.ID, domain.RoleSystem, instruction)
	if err != nil {
		s.abort(ctx, sess, conv.ID)
		return nil, fmt.Errorf("failed to save guiding instruction: %w", err)
	}
	sess.Append(*sysMsg)
	sess.Mode = mode
	sess.InstructionEstablished = true
	result.Mode = mode

	if err := s.appendUser(ctx, sess, input, sink); err != nil {
		return nil, err
	}

	return s.streamReply(ctx, sess, provider, sink, result)
}

func (s *ChatService) followUp(ctx context.Context, sess *tutor.Session, provider llm.Provider, input string, sink tutor.Sink) (*TurnResult, error) {
	if sess.Phase == tutor.PhaseReloaded {
		sess.Phase = tutor.PhaseActive
	}

	result := &TurnResult{ConversationID: sess.ConversationID, Mode: sess.Mode}

	// Read before the new turn is appended
	window := sess.ContextWindow()

	if err := s.appendUser(ctx, sess, input, sink); err != nil {
		return nil, err
	}

	if sess.Mode == tutor.ModeInstructional {
		applied, err := s.applyFeedback(ctx, sess, provider, window, input, sink)
		if err != nil {
			return nil, err
		}
		result.FeedbackApplied = applied
	}

	return s.streamReply(ctx, sess, provider, sink, result)
}

func (s *ChatService) appendUser(ctx context.Context, sess *tutor.Session, input string, sink tutor.Sink) error {
	msg, err := s.store.SaveMessage(ctx, *sess.ConversationID, domain.RoleUser, input)
	if err != nil {
		return fmt.Errorf("failed to save user message: %w", err)
	}
	sess.Append(*msg)
	sink.Final(domain.RoleUser, input)
	return nil
}

// applyFeedback runs feedback analysis and, when it asks for a revision,
// amends the guiding instruction and produces one immediate reply
func (s *ChatService) applyFeedback(ctx context.Context, sess *tutor.Session, provider llm.Provider, window, input string, sink tutor.Sink) (bool, error) {
	feedback, err := tutor.NewFeedbackAnalyzer(provider, s.cfg.Analyzer).Analyze(ctx, window, input)
	if err != nil {
		sink.Notice(tutor.NoticeWarning, "Feedback analysis was unavailable for this message.")
	}
	if !feedback.NeedsAmendment() {
		return false, nil
	}

	idx := sess.GuidingInstructionIndex()
	if idx < 0 {
		log.Warn().Str("session_id", sess.ID.String()).Msg("no guiding instruction to amend")
		return false, nil
	}

	instruction := &sess.Messages[idx]
	amended := tutor.AmendInstruction(instruction.Content, feedback.SuggestedAdjustment)
	if err := s.store.UpdateMessageContent(ctx, instruction.ID, amended); err != nil {
		return false, fmt.Errorf("failed to amend guiding instruction: %w", err)
	}
	instruction.Content = amended

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("reason", feedback.Reason).
		Msg("guiding instruction amended")

	resp, err := provider.Complete(ctx, llm.Request{
		Messages:    sess.LLMMessages(),
		Model:       s.cfg.Amendment.Model,
		Temperature: llm.Temperature(s.cfg.Amendment.Temperature),
		MaxTokens:   s.cfg.Amendment.MaxTokens,
	})
	if err != nil {
		log.Warn().Err(err).Msg("adjusted reply failed")
		sink.Notice(tutor.NoticeWarning, "Feedback was applied, but the adjusted reply could not be generated.")
		return true, nil
	}

	if _, err := s.appendAssistant(ctx, sess, resp.Content, sink); err != nil {
		return true, err
	}
	sink.Notice(tutor.NoticeInfo, "Feedback applied: the lesson plan has been adjusted.")
	return true, nil
}

func (s *ChatService) streamReply(ctx context.Context, sess *tutor.Session, provider llm.Provider, sink tutor.Sink, result *TurnResult) (*TurnResult, error) {
	req := llm.Request{
		Messages:  sess.LLMMessages(),
		Model:     s.cfg.Reply.Model,
		MaxTokens: s.cfg.Reply.MaxTokens,
	}
	if s.cfg.Reply.Temperature > 0 {
		req.Temperature = llm.Temperature(s.cfg.Reply.Temperature)
	}

	var acc strings.Builder
	_, err := provider.Stream(ctx, req, func(ctx context.Context, chunk string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		acc.WriteString(chunk)
		sink.Partial(acc.String() + tutor.StreamCursor)
		return nil
	})

	sess.Phase = tutor.PhaseActive

	if ctx.Err() != nil {
		log.Debug().Str("session_id", sess.ID.String()).Msg("reply cancelled, partial discarded")
		result.Outcome = OutcomeCancelled
		result.Err = ctx.Err()
		return result, nil
	}

	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("streamed reply failed")
		sink.Notice(tutor.NoticeError, "The reply could not be generated. Please try again.")
		result.Outcome = OutcomeStreamFailed
		result.Err = fmt.Errorf("%w: %w", tutor.ErrStreamFailed, err)
		return result, nil
	}

	reply := acc.String()
	if _, err := s.appendAssistant(ctx, sess, reply, sink); err != nil {
		return nil, err
	}

	result.Outcome = OutcomeReplied
	result.Reply = reply
	return result, nil
}

// appendAssistant persists an assistant reply unless it repeats the message
// right before it. It reports whether a new message was stored.
func (s *ChatService) appendAssistant(ctx context.Context, sess *tutor.Session, content string, sink tutor.Sink) (bool, error) {
	if sess.IsDuplicateReply(content) {
		log.Debug().Str("session_id", sess.ID.String()).Msg("duplicate assistant reply suppressed")
		sink.Final(domain.RoleAssistant, notation.Rewrite(content))
		return false, nil
	}

	msg, err := s.store.SaveMessage(ctx, *sess.ConversationID, domain.RoleAssistant, content)
	if err != nil {
		return false, fmt.Errorf("failed to save assistant message: %w", err)
	}
	sess.Append(*msg)
	sink.Final(domain.RoleAssistant, notation.Rewrite(content))
	return true, nil
}

// abort discards all session state after a fatal first-turn failure
func (s *ChatService) abort(ctx context.Context, sess *tutor.Session, conversationID uuid.UUID) {
	if err := s.store.DeleteConversation(context.WithoutCancel(ctx), conversationID); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID.String()).Msg("failed to remove aborted conversation")
	}
	sess.Reset()
	sess.Phase = tutor.PhaseAborted
}

// Reload loads a stored conversation into the session. The next Submit or
// Replay consumes the skip flag so history is shown without a new reply.
func (s *ChatService) Reload(ctx context.Context, sess *tutor.Session, conversationID uuid.UUID) error {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to get conversation: %w", err)
	}

	messages, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	sess.Reset()
	sess.ConversationID = &conv.ID
	sess.Messages = messages
	sess.Mode = modeOf(messages)

	if sess.GuidingInstructionIndex() < 0 {
		// Legacy transcripts saved without an instruction get the casual one in memory only
		sess.Messages = append([]domain.Message{{
			ConversationID: conv.ID,
			Role:           domain.RoleSystem,
			Content:        tutor.CasualInstruction,
			CreatedAt:      conv.CreatedAt,
		}}, sess.Messages...)
	}

	sess.InstructionEstablished = true
	sess.Phase = tutor.PhaseReloaded
	sess.SkipNextInference = true

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("conversation_id", conv.ID.String()).
		Str("mode", string(sess.Mode)).
		Int("messages", len(messages)).
		Msg("conversation reloaded")

	return nil
}

func modeOf(messages []domain.Message) tutor.Mode {
	for _, m := range messages {
		if m.Role != domain.RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Content == tutor.CasualInstruction {
			return tutor.ModeCasual
		}
		return tutor.ModeInstructional
	}
	return tutor.ModeCasual
}

// Replay renders the loaded history once and clears the skip flag
func (s *ChatService) Replay(sess *tutor.Session, sink tutor.Sink) {
	for _, m := range sess.DisplayMessages() {
		content := m.Content
		if m.Role == domain.RoleAssistant {
			content = notation.Rewrite(content)
		}
		sink.Final(m.Role, content)
	}
	sess.SkipNextInference = false
	if sess.Phase == tutor.PhaseReloaded {
		sess.Phase = tutor.PhaseActive
	}
}

// Reset starts a new session
func (s *ChatService) Reset(sess *tutor.Session) {
	sess.Reset()
}

// ValidateProvider checks the session's provider credentials
func (s *ChatService) ValidateProvider(ctx context.Context, settings tutor.LLMSettings) error {
	provider, err := s.llmRouter.GetProviderWithConfig(settings.Provider, settings.Config())
	if err != nil {
		return err
	}
	return provider.Validate(ctx)
}
