package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/export"
)

// ListConversations returns conversations, most recently active first
func (s *ChatService) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	conversations, err := s.store.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// SearchConversations ranks conversation titles against query. An empty
// query lists everything.
func (s *ChatService) SearchConversations(ctx context.Context, query string) ([]domain.Conversation, error) {
	conversations, err := s.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return conversations, nil
	}

	titles := make([]string, len(conversations))
	for i, c := range conversations {
		titles[i] = c.Title
	}

	ranks := fuzzy.RankFindFold(query, titles)
	sort.Stable(ranks)

	out := make([]domain.Conversation, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, conversations[r.OriginalIndex])
	}
	return out, nil
}

// GetConversation returns one conversation
func (s *ChatService) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	return s.store.GetConversation(ctx, id)
}

// GetMessages returns the stored transcript in creation order
func (s *ChatService) GetMessages(ctx context.Context, id uuid.UUID) ([]domain.Message, error) {
	if _, err := s.store.GetConversation(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, id)
}

// DeleteConversation removes a conversation and its messages. Deleting an
// unknown id is not an error.
func (s *ChatService) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteConversation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	log.Info().Str("conversation_id", id.String()).Msg("conversation deleted")
	return nil
}

// ExportConversation writes the transcript of id to w in the given format
func (s *ChatService) ExportConversation(ctx context.Context, id uuid.UUID, format export.Format, w io.Writer) error {
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return err
	}

	messages, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	return export.Write(w, format, *conv, messages)
}

// GetReferenceDocument returns the drafting reference, empty when unset
func (s *ChatService) GetReferenceDocument(ctx context.Context) (string, error) {
	return s.store.GetReferenceDocument(ctx)
}

// SaveReferenceDocument replaces the drafting reference
func (s *ChatService) SaveReferenceDocument(ctx context.Context, content string) error {
	if err := s.store.SaveReferenceDocument(ctx, content); err != nil {
		return fmt.Errorf("failed to save reference document: %w", err)
	}
	log.Info().Int("bytes", len(content)).Msg("reference document saved")
	return nil
}

// BootstrapReference loads the file at path into the reference slot when the
// slot is empty. A missing file only logs.
func (s *ChatService) BootstrapReference(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	current, err := s.store.GetReferenceDocument(ctx)
	if err != nil {
		return fmt.Errorf("failed to read reference document: %w", err)
	}
	if strings.TrimSpace(current) != "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Info().Err(err).Str("path", path).Msg("reference document not found, drafting without it")
		return nil
	}

	return s.SaveReferenceDocument(ctx, string(data))
}
