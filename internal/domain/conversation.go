package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Conversation is a persisted chat thread. Its messages are owned by it and
// are removed with it.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationRepository defines the interface for conversation storage
type ConversationRepository interface {
	// CreateConversation inserts a conversation with both timestamps set to now.
	CreateConversation(ctx context.Context, title string) (*Conversation, error)

	// GetConversation returns ErrNotFound when the id is unknown.
	GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error)

	// ListConversations returns conversations ordered by updated_at, newest first.
	ListConversations(ctx context.Context) ([]Conversation, error)

	// DeleteConversation removes the conversation and its messages.
	// Deleting an unknown id is not an error.
	DeleteConversation(ctx context.Context, id uuid.UUID) error
}

// ReferenceRepository holds the single optional reference document used to
// ground framework drafting.
type ReferenceRepository interface {
	GetReferenceDocument(ctx context.Context) (string, error)
	SaveReferenceDocument(ctx context.Context, content string) error
}

// TranscriptStore is the full persistence contract a storage backend provides.
type TranscriptStore interface {
	ConversationRepository
	MessageRepository
	ReferenceRepository

	Ping(ctx context.Context) error
	Close() error
}
