package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Valid reports whether r is one of the persisted roles.
func (r MessageRole) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one entry of a conversation transcript. Only the guiding
// instruction (RoleSystem) is ever rewritten after it has been saved.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	// SaveMessage appends a message and bumps the parent conversation's
	// updated_at in the same transaction. Returns ErrNotFound if the
	// conversation does not exist.
	SaveMessage(ctx context.Context, conversationID uuid.UUID, role MessageRole, content string) (*Message, error)

	// ListMessages returns the conversation's messages in creation order.
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error)

	// UpdateMessageContent overwrites a message's content in place.
	UpdateMessageContent(ctx context.Context, messageID uuid.UUID, content string) error
}
