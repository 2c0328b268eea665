package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetReferenceDocument returns the reference document, or "" when unset
func (db *DB) GetReferenceDocument(ctx context.Context) (string, error) {
	var content string
	err := db.Pool.QueryRow(ctx, `SELECT content FROM reference_document WHERE id = 1`).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get reference document: %w", err)
	}
	return content, nil
}

// SaveReferenceDocument overwrites the single reference document slot
func (db *DB) SaveReferenceDocument(ctx context.Context, content string) error {
	query := `
		INSERT INTO reference_document (id, content, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
	`
	if _, err := db.Pool.Exec(ctx, query, content, db.timestamp()); err != nil {
		return fmt.Errorf("failed to save reference document: %w", err)
	}
	return nil
}
