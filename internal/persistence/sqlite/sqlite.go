package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/booking-admin/internal/persistence"
	"github.com/example/booking-admin/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage is a SQLite-backed persistence.KeyValueStore.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
	retry  RetryConfig
	now    func() time.Time
}

var _ persistence.KeyValueStore = (*Storage)(nil)

// Open connects to the database at dsn with the default configuration.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	return OpenWithConfig(ctx, migration.DefaultSQLiteConfig(dsn), logger)
}

// OpenWithConfig connects using an explicit SQLite configuration.
func OpenWithConfig(ctx context.Context, config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := migration.Open(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &Storage{
		db:     db,
		logger: logger.With("component", "sqlite"),
		retry:  DefaultRetryConfig(),
		now:    time.Now,
	}, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying pool.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.db),
		s.logger,
	)
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", persistence.ErrEmptyKey
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", mapError(err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}

	const upsertSQL = `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	updatedAt := s.now().UTC().Format(time.RFC3339Nano)
	return withRetry(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx, upsertSQL, key, value, updatedAt)
		return err
	})
}

// Delete removes key. Deleting an absent key succeeds.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}
	return withRetry(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key)
		return err
	})
}
