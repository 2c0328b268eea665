package tutor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/llm"
)

func msg(role domain.MessageRole, content string) domain.Message {
	return domain.Message{ID: uuid.New(), Role: role, Content: content}
}

func TestContextWindow(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
		expected string
	}{
		{name: "empty", contents: nil, expected: ""},
		{name: "fewer than three", contents: []string{"a", "b"}, expected: "a\nb"},
		{name: "exactly three", contents: []string{"a", "b", "c"}, expected: "a\nb\nc"},
		{name: "more than three", contents: []string{"a", "b", "c", "d", "e"}, expected: "c\nd\ne"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			for _, c := range tt.contents {
				s.Append(msg(domain.RoleUser, c))
			}
			assert.Equal(t, tt.expected, s.ContextWindow())
		})
	}
}

func TestSession_GuidingInstructionIndex(t *testing.T) {
	s := NewSession()
	assert.Equal(t, -1, s.GuidingInstructionIndex())

	s.Append(msg(domain.RoleSystem, "   "))
	s.Append(msg(domain.RoleSystem, "real instruction"))
	s.Append(msg(domain.RoleUser, "hi"))
	s.Append(msg(domain.RoleSystem, "later"))
	assert.Equal(t, 1, s.GuidingInstructionIndex())
}

func TestSession_IsDuplicateReply(t *testing.T) {
	s := NewSession()
	assert.False(t, s.IsDuplicateReply("x"))

	s.Append(msg(domain.RoleAssistant, "x"))
	assert.True(t, s.IsDuplicateReply("x"))
	assert.False(t, s.IsDuplicateReply("y"))

	// Only the immediate predecessor counts
	s.Append(msg(domain.RoleUser, "x"))
	assert.False(t, s.IsDuplicateReply("x"))
}

func TestSession_Reset(t *testing.T) {
	s := NewSession()
	id := s.ID
	cid := uuid.New()
	s.ConversationID = &cid
	s.Phase = PhaseActive
	s.Mode = ModeInstructional
	s.InstructionEstablished = true
	s.SkipNextInference = true
	s.Append(msg(domain.RoleSystem, "sys"))

	s.Reset()
	assert.Equal(t, id, s.ID)
	assert.Equal(t, PhaseEmpty, s.Phase)
	assert.Equal(t, ModeUnset, s.Mode)
	assert.Nil(t, s.ConversationID)
	assert.Empty(t, s.Messages)
	assert.False(t, s.InstructionEstablished)
	assert.False(t, s.SkipNextInference)
	assert.True(t, s.IsEmpty())
}

func TestSession_Views(t *testing.T) {
	s := NewSession()
	s.Append(msg(domain.RoleSystem, "sys"))
	s.Append(msg(domain.RoleUser, "hi"))
	s.Append(msg(domain.RoleAssistant, "hello"))

	display := s.DisplayMessages()
	require.Len(t, display, 2)
	assert.Equal(t, domain.RoleUser, display[0].Role)

	reqMessages := s.LLMMessages()
	require.Len(t, reqMessages, 3)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "sys"}, reqMessages[0])
}
