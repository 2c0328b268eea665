package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rrens/tutor-chat/internal/domain"
)

// SaveMessage appends a message and bumps the conversation's updated_at
func (db *DB) SaveMessage(ctx context.Context, conversationID uuid.UUID, role domain.MessageRole, content string) (*domain.Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}

	m := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      db.timestamp(),
	}

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
			m.CreatedAt, conversationID,
		)
		if err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
		}

		query := `
			INSERT INTO messages (id, conversation_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, query, m.ID, conversationID, string(role), content, m.CreatedAt); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages retrieves a conversation's messages in chronological order
func (db *DB) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := db.Pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var roleStr string

		if err := rows.Scan(&m.ID, &roleStr, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.ConversationID = conversationID
		m.Role = domain.MessageRole(roleStr)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpdateMessageContent overwrites a message's content
func (db *DB) UpdateMessageContent(ctx context.Context, messageID uuid.UUID, content string) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE messages SET content = $1 WHERE id = $2`, content, messageID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	return nil
}
