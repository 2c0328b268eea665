package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/tutor-chat/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Requires database connection (set TEST_POSTGRES_DSN)")
	}
	require.NoError(t, RunMigrations(dsn))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	db := &DB{Pool: pool, now: time.Now}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_TranscriptLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	conv, err := db.CreateConversation(ctx, "Integration")
	require.NoError(t, err)
	t.Cleanup(func() { db.DeleteConversation(context.Background(), conv.ID) })

	sys, err := db.SaveMessage(ctx, conv.ID, domain.RoleSystem, "instruction")
	require.NoError(t, err)
	_, err = db.SaveMessage(ctx, conv.ID, domain.RoleUser, "question")
	require.NoError(t, err)
	_, err = db.SaveMessage(ctx, conv.ID, domain.RoleAssistant, "answer")
	require.NoError(t, err)

	require.NoError(t, db.UpdateMessageContent(ctx, sys.ID, "instruction\n- slower"))

	messages, err := db.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "instruction\n- slower", messages[0].Content)
	assert.Equal(t, domain.RoleUser, messages[1].Role)
	assert.Equal(t, "answer", messages[2].Content)

	got, err := db.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, db.DeleteConversation(ctx, conv.ID))
	messages, err = db.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.NoError(t, db.DeleteConversation(ctx, conv.ID))
}

func TestDB_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetConversation(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = db.SaveMessage(ctx, uuid.New(), domain.RoleUser, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, db.UpdateMessageContent(ctx, uuid.New(), "x"), domain.ErrNotFound)
}

func TestDB_ReferenceDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveReferenceDocument(ctx, "first"))
	require.NoError(t, db.SaveReferenceDocument(ctx, "second"))

	content, err := db.GetReferenceDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", content)
}
