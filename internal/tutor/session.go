package tutor

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/llm"
)

// Phase is the session state-machine tag
type Phase string

const (
	PhaseEmpty             Phase = "empty"
	PhaseAwaitingFramework Phase = "awaiting_framework"
	PhaseActive            Phase = "active"
	PhaseAborted           Phase = "aborted"
	PhaseReloaded          Phase = "reloaded"
)

// Mode distinguishes instructional sessions from casual ones
type Mode string

const (
	ModeUnset         Mode = ""
	ModeInstructional Mode = "instructional"
	ModeCasual        Mode = "casual"
)

// ContextWindowSize is how many recent messages feedback analysis reads
const ContextWindowSize = 3

// LLMSettings selects the provider a session talks to. APIKey is the
// user's own key and is never persisted.
type LLMSettings struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"-"`
}

// Config returns the per-session provider factory config
func (l LLMSettings) Config() map[string]any {
	cfg := map[string]any{}
	if l.APIKey != "" {
		cfg["api_key"] = l.APIKey
	}
	if l.Model != "" {
		cfg["model"] = l.Model
	}
	return cfg
}

// Session is the in-memory state of one interactive chat. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	ID                     uuid.UUID
	LLM                    LLMSettings
	Phase                  Phase
	Mode                   Mode
	ConversationID         *uuid.UUID
	Messages               []domain.Message
	InstructionEstablished bool
	SkipNextInference      bool
}

// NewSession returns an empty session
func NewSession() *Session {
	return &Session{ID: uuid.New(), Phase: PhaseEmpty}
}

// NewSessionWith returns an empty session bound to the given provider settings
func NewSessionWith(settings LLMSettings) *Session {
	s := NewSession()
	s.LLM = settings
	return s
}

// Reset discards all conversation state, keeping the session identity
func (s *Session) Reset() {
	s.Phase = PhaseEmpty
	s.Mode = ModeUnset
	s.ConversationID = nil
	s.Messages = nil
	s.InstructionEstablished = false
	s.SkipNextInference = false
}

// IsEmpty reports whether no conversation has started
func (s *Session) IsEmpty() bool {
	return s.ConversationID == nil && len(s.Messages) == 0
}

// Append adds a message to the in-memory transcript
func (s *Session) Append(m domain.Message) {
	s.Messages = append(s.Messages, m)
}

// Last returns the most recent message, if any
func (s *Session) Last() (domain.Message, bool) {
	if len(s.Messages) == 0 {
		return domain.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// ContextWindow joins the contents of the last ContextWindowSize messages,
// or all of them when fewer exist, in chronological order
func (s *Session) ContextWindow() string {
	return ContextWindow(s.Messages)
}

// ContextWindow joins the contents of the last ContextWindowSize messages
func ContextWindow(messages []domain.Message) string {
	window := messages
	if len(window) > ContextWindowSize {
		window = window[len(window)-ContextWindowSize:]
	}
	return strings.Join(lo.Map(window, func(m domain.Message, _ int) string {
		return m.Content
	}), "\n")
}

// GuidingInstructionIndex returns the position of the earliest system message
// carrying real content, or -1
func (s *Session) GuidingInstructionIndex() int {
	_, idx, ok := lo.FindIndexOf(s.Messages, func(m domain.Message) bool {
		return m.Role == domain.RoleSystem && hasContent(m.Content)
	})
	if !ok {
		return -1
	}
	return idx
}

// IsDuplicateReply reports whether content repeats the immediately preceding
// assistant message
func (s *Session) IsDuplicateReply(content string) bool {
	last, ok := s.Last()
	return ok && last.Role == domain.RoleAssistant && last.Content == content
}

// DisplayMessages returns the user and assistant turns in order
func (s *Session) DisplayMessages() []domain.Message {
	return lo.Filter(s.Messages, func(m domain.Message, _ int) bool {
		return m.Role != domain.RoleSystem
	})
}

// LLMMessages converts the transcript into a completion request body
func (s *Session) LLMMessages() []llm.Message {
	return lo.Map(s.Messages, func(m domain.Message, _ int) llm.Message {
		return llm.Message{Role: string(m.Role), Content: m.Content}
	})
}
