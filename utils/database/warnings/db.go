package warnings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store keeps the version chains of warnings. Rows are never deleted.
type Store struct {
	DB  *sqlx.DB
	Now func() time.Time
}

// Init opens the database at dbPath and ensures the warnings table exists.
func Init(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sqlx.Connect("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// one writer at a time; transactions hold the only connection
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// Migrate creates the warnings table and its indexes.
func Migrate(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS warnings (
			row_id INTEGER PRIMARY KEY AUTOINCREMENT,
			guild_id TEXT NOT NULL,
			warning_id INTEGER NOT NULL,
			version INTEGER NOT NULL,
			user_id TEXT NOT NULL,
			moderator_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			permanent BOOLEAN NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			edited_by TEXT,
			edited_at INTEGER,
			valid_until INTEGER,
			UNIQUE (guild_id, warning_id, version)
		);`,
		// at most one current version per warning
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_warnings_current ON warnings (guild_id, warning_id) WHERE valid_until IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_warnings_user ON warnings (guild_id, user_id);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create warnings schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
