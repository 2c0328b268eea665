package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rrens/tutor-chat/internal/domain"
)

// CreateConversation inserts a new conversation
func (db *DB) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	now := db.timestamp()
	c := &domain.Conversation{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := db.Pool.Exec(ctx, query, c.ID, c.Title, c.CreatedAt, c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return c, nil
}

// GetConversation returns one conversation
func (db *DB) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`
	var c domain.Conversation
	err := db.Pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns conversations, most recently updated first
func (db *DB) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC, created_at DESC
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []domain.Conversation{}
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// DeleteConversation removes a conversation; messages go with it via ON DELETE CASCADE
func (db *DB) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
