// Package sqlstore implements the transcript store on database/sql for the
// embedded SQLite driver and MySQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Rrens/tutor-chat/internal/domain"
)

// Dialect selects SQL syntax differences
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// Store implements domain.TranscriptStore
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	switch dialect {
	case DialectSQLite, DialectMySQL:
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == DialectSQLite {
		// One writer keeps SQLite free of SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, dialect), nil
}

// New wraps an open database handle
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: time.Now}
}

// SQLiteDSN builds a DSN for a database file with foreign keys enabled
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// CreateConversation inserts a new conversation
func (s *Store) CreateConversation(ctx context.Context, title string) (*domain.Conversation, error) {
	now := s.now().UTC()
	c := &domain.Conversation{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID.String(), c.Title, toNanos(now), toNanos(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return c, nil
}

// GetConversation returns one conversation
func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var (
		c                domain.Conversation
		rawID            string
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &c.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	c.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation id %q: %w", rawID, err)
	}
	c.CreatedAt = fromNanos(created)
	c.UpdatedAt = fromNanos(updated)
	return &c, nil
}

// ListConversations returns conversations, most recently updated first
func (s *Store) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []domain.Conversation{}
	for rows.Next() {
		var (
			c                domain.Conversation
			rawID            string
			created, updated int64
		)
		if err := rows.Scan(&rawID, &c.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if c.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("invalid conversation id %q: %w", rawID, err)
		}
		c.CreatedAt = fromNanos(created)
		c.UpdatedAt = fromNanos(updated)
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// DeleteConversation removes a conversation and its messages
func (s *Store) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id.String()); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		return nil
	})
}

// SaveMessage appends a message and bumps the conversation's updated_at
func (s *Store) SaveMessage(ctx context.Context, conversationID uuid.UUID, role domain.MessageRole, content string) (*domain.Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}

	now := s.now().UTC()
	m := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, `SELECT COUNT(*) FROM conversations WHERE id = ?`, conversationID.String()); err != nil {
			return fmt.Errorf("conversation %s: %w", conversationID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			m.ID.String(), conversationID.String(), string(role), content, toNanos(now),
		); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE conversations SET updated_at = ? WHERE id = ?`,
			toNanos(now), conversationID.String(),
		); err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns messages in creation order
func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, seq ASC`,
		conversationID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var (
			m       domain.Message
			rawID   string
			role    string
			created int64
		)
		if err := rows.Scan(&rawID, &role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if m.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("invalid message id %q: %w", rawID, err)
		}
		m.ConversationID = conversationID
		m.Role = domain.MessageRole(role)
		m.CreatedAt = fromNanos(created)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpdateMessageContent overwrites a message's content
func (s *Store) UpdateMessageContent(ctx context.Context, messageID uuid.UUID, content string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, `SELECT COUNT(*) FROM messages WHERE id = ?`, messageID.String()); err != nil {
			return fmt.Errorf("message %s: %w", messageID, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE messages SET content = ? WHERE id = ?`, content, messageID.String()); err != nil {
			return fmt.Errorf("failed to update message: %w", err)
		}
		return nil
	})
}

// GetReferenceDocument returns the reference document, or "" when unset
func (s *Store) GetReferenceDocument(ctx context.Context) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM reference_document WHERE id = 1`).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get reference document: %w", err)
	}
	return content, nil
}

// SaveReferenceDocument writes the reference document slot
func (s *Store) SaveReferenceDocument(ctx context.Context, content string) error {
	query := `INSERT INTO reference_document (id, content, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`
	if s.dialect == DialectMySQL {
		query = `INSERT INTO reference_document (id, content, updated_at) VALUES (1, ?, ?)
		ON DUPLICATE KEY UPDATE content = VALUES(content), updated_at = VALUES(updated_at)`
	}

	if _, err := s.db.ExecContext(ctx, query, content, toNanos(s.now())); err != nil {
		return fmt.Errorf("failed to save reference document: %w", err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func exists(ctx context.Context, tx *sql.Tx, query string, arg any) error {
	var n int
	if err := tx.QueryRowContext(ctx, query, arg).Scan(&n); err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
