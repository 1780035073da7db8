package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/liftlog/liftlog-mcp/internal/logging"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the local SQLite copy of the hosted training log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, applies the SQLite
// concurrency settings, and verifies no other instance holds it.
func Open(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := configure(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("configuring SQLite: %w", err)
	}
	if err := checkLock(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &Store{db: sqlDB}, nil
}

// OpenInMemory opens a private in-memory database. Used by tests.
func OpenInMemory() (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return &Store{db: sqlDB}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	log := logging.Logger

	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("locating migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, dir)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	for _, r := range results {
		log.Debug().Int64("version", r.Source.Version).Str("path", r.Source.Path).Msg("migration applied")
	}
	log.Debug().Int("applied", len(results)).Msg("database migrations completed")
	return nil
}

// configure applies the SQLite settings for a single long-lived process:
// WAL for concurrent reads, a busy timeout instead of immediate failure,
// and a single connection.
func configure(sqlDB *sql.DB) error {
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("setting synchronous mode: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	logging.Logger.Debug().
		Str("journal_mode", "WAL").
		Str("busy_timeout", "5000ms").
		Msg("SQLite configured")
	return nil
}

// checkLock verifies no other process has the database open.
func checkLock(sqlDB *sql.DB) error {
	if _, err := sqlDB.Exec("PRAGMA locking_mode=EXCLUSIVE"); err != nil {
		return fmt.Errorf("another instance may be running (database locked): %w", err)
	}

	if _, err := sqlDB.Exec("BEGIN EXCLUSIVE"); err != nil {
		if strings.Contains(err.Error(), "locked") || strings.Contains(err.Error(), "busy") {
			return fmt.Errorf("another instance is already running (database is locked)")
		}
		return fmt.Errorf("checking database lock: %w", err)
	}
	if _, err := sqlDB.Exec("COMMIT"); err != nil {
		return fmt.Errorf("releasing lock check: %w", err)
	}

	logging.Logger.Debug().Msg("database lock check passed")
	return nil
}
