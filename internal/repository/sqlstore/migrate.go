package sqlstore

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrations embed.FS

// RunMigrations applies the embedded migrations for the dialect. For SQLite
// dsn is the database file path; for MySQL it is a go-sql-driver DSN.
func RunMigrations(dialect Dialect, dsn string) error {
	src, err := iofs.New(migrations, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL(dialect, dsn))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("driver", string(dialect)).Msg("database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info().Str("driver", string(dialect)).Msg("database migration: success")
	return nil
}

func migrationURL(dialect Dialect, dsn string) string {
	if dialect == DialectMySQL {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return "mysql://" + dsn + sep + "multiStatements=true"
	}
	return "sqlite://" + dsn
}
