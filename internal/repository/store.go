// Package repository selects and prepares the configured transcript store.
package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/tutor-chat/internal/config"
	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/repository/mongo"
	"github.com/Rrens/tutor-chat/internal/repository/postgres"
	"github.com/Rrens/tutor-chat/internal/repository/sqlstore"
)

// Open connects to the store named by cfg.Driver
func Open(ctx context.Context, cfg config.StorageConfig) (domain.TranscriptStore, error) {
	log.Info().Str("driver", cfg.Driver).Msg("Opening transcript store")

	var (
		store domain.TranscriptStore
		err   error
	)
	switch cfg.Driver {
	case config.DriverSQLite, "":
		if err := ensureDir(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		store, err = asStore(sqlstore.Open(ctx, sqlstore.DialectSQLite, sqlstore.SQLiteDSN(cfg.SQLite.Path)))
	case config.DriverMySQL:
		store, err = asStore(sqlstore.Open(ctx, sqlstore.DialectMySQL, cfg.MySQL.DSN()))
	case config.DriverPostgres:
		store, err = asStore(postgres.NewDB(ctx, cfg.Postgres))
	case config.DriverMongo:
		store, err = asStore(mongo.Connect(ctx, cfg.Mongo))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// asStore keeps a typed nil from leaking out as a non-nil interface
func asStore[S domain.TranscriptStore](s S, err error) (domain.TranscriptStore, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate brings the configured store's schema up to date
func Migrate(ctx context.Context, cfg config.StorageConfig) error {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		if err := ensureDir(cfg.SQLite.Path); err != nil {
			return err
		}
		return sqlstore.RunMigrations(sqlstore.DialectSQLite, cfg.SQLite.Path)
	case config.DriverMySQL:
		return sqlstore.RunMigrations(sqlstore.DialectMySQL, cfg.MySQL.DSN())
	case config.DriverPostgres:
		return postgres.RunMigrations(cfg.Postgres.DSN())
	case config.DriverMongo:
		store, err := mongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.EnsureIndexes(ctx)
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}
