// Package mongo stores each conversation as one document with its messages
// embedded in order.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/tutor-chat/internal/config"
	"github.com/Rrens/tutor-chat/internal/domain"
)

const (
	conversationsCollection = "conversations"
	referenceCollection     = "reference_documents"
	referenceID             = "reference"
)

type conversationDoc struct {
	ID        string       `bson:"_id"`
	Title     string       `bson:"title"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
	Messages  []messageDoc `bson:"messages,omitempty"`
}

type messageDoc struct {
	ID        string    `bson:"id"`
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

type referenceDoc struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store implements domain.TranscriptStore on MongoDB
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect opens a client, verifies it and selects the database
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		clientOpts.SetConnectTimeout(cfg.Timeout)
		clientOpts.SetServerSelectionTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(cfg.Database),
		now:    time.Now,
	}, nil
}

// EnsureIndexes creates the indexes the store queries rely on
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.conversations().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "messages.id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) conversations() *mongo.Collection {
	return s.db.Collection(conversationsCollection)
}

// timestamp truncates to BSON datetime precision
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Store) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	now := s.timestamp()
	doc := conversationDoc{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// messages starts as an empty array so $push has a target
	insert := bson.M{
		"_id":        doc.ID,
		"title":      doc.Title,
		"created_at": doc.CreatedAt,
		"updated_at": doc.UpdatedAt,
		"messages":   bson.A{},
	}
	if _, err := s.conversations().InsertOne(ctx, insert); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return doc.toDomain()
}

func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var doc conversationDoc
	opts := options.FindOne().SetProjection(bson.M{"messages": 0})
	err := s.conversations().FindOne(ctx, bson.M{"_id": id.String()}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return doc.toDomain()
}

func (s *Store) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	opts := options.Find().
		SetProjection(bson.M{"messages": 0}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "created_at", Value: -1}})

	cursor, err := s.conversations().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	conversations := []domain.Conversation{}
	for cursor.Next(ctx) {
		var doc conversationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		c, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *c)
	}
	return conversations, cursor.Err()
}

// DeleteConversation removes the document and with it every embedded message
func (s *Store) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	if _, err := s.conversations().DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// SaveMessage pushes the message and bumps updated_at in one atomic document update
func (s *Store) SaveMessage(ctx context.Context, conversationID uuid.UUID, role domain.MessageRole, content string) (*domain.Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}

	now := s.timestamp()
	doc := messageDoc{
		ID:        uuid.NewString(),
		Role:      string(role),
		Content:   content,
		CreatedAt: now,
	}

	update := bson.M{
		"$push": bson.M{"messages": doc},
		"$set":  bson.M{"updated_at": now},
	}
	res, err := s.conversations().UpdateOne(ctx, bson.M{"_id": conversationID.String()}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}

	return doc.toDomain(conversationID)
}

func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	var doc conversationDoc
	opts := options.FindOne().SetProjection(bson.M{"messages": 1})
	err := s.conversations().FindOne(ctx, bson.M{"_id": conversationID.String()}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]domain.Message, 0, len(doc.Messages))
	for _, md := range doc.Messages {
		m, err := md.toDomain(conversationID)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, nil
}

func (s *Store) UpdateMessageContent(ctx context.Context, messageID uuid.UUID, content string) error {
	res, err := s.conversations().UpdateOne(ctx,
		bson.M{"messages.id": messageID.String()},
		bson.M{"$set": bson.M{"messages.$.content": content}},
	)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) GetReferenceDocument(ctx context.Context) (string, error) {
	var doc referenceDoc
	err := s.db.Collection(referenceCollection).FindOne(ctx, bson.M{"_id": referenceID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get reference document: %w", err)
	}
	return doc.Content, nil
}

func (s *Store) SaveReferenceDocument(ctx context.Context, content string) error {
	_, err := s.db.Collection(referenceCollection).ReplaceOne(ctx,
		bson.M{"_id": referenceID},
		referenceDoc{ID: referenceID, Content: content, UpdatedAt: s.timestamp()},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save reference document: %w", err)
	}
	return nil
}

func (d conversationDoc) toDomain() (*domain.Conversation, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation id %q: %w", d.ID, err)
	}
	return &domain.Conversation{
		ID:        id,
		Title:     d.Title,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func (d messageDoc) toDomain(conversationID uuid.UUID) (*domain.Message, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", d.ID, err)
	}
	return &domain.Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           domain.MessageRole(d.Role),
		Content:        d.Content,
		CreatedAt:      d.CreatedAt.UTC(),
	}, nil
}
