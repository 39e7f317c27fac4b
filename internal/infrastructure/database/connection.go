package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eslsoft/kyoshi/internal/infrastructure/config"
)

// DB wraps the standard connection pool with the driver name so repositories
// can rebind placeholders for the active dialect.
type DB struct {
	*sql.DB
	driver string
}

// NewConnection opens the configured database and verifies connectivity.
func NewConnection(cfg *config.Config) (*DB, func(), error) {
	driver := cfg.Database.Driver
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case "sqlite3":
		db, err = sql.Open("sqlite3", cfg.Database.Path+"?_foreign_keys=on")
	case "postgres":
		db, err = sql.Open("pgx", cfg.DatabaseURL())
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	wrapped := &DB{DB: db, driver: driver}
	cleanup := func() { _ = db.Close() }
	return wrapped, cleanup, nil
}

// Driver returns the active driver name.
func (d *DB) Driver() string { return d.driver }

// Rebind rewrites ? placeholders into the dialect's form. Queries in the
// repositories are written with ? and rebound at call time.
func (d *DB) Rebind(query string) string {
	if d.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS item_mastery (
		chat_id         TEXT NOT NULL,
		item_id         TEXT NOT NULL,
		item_type       TEXT NOT NULL,
		correct_count   INTEGER NOT NULL DEFAULT 0,
		incorrect_count INTEGER NOT NULL DEFAULT 0,
		mastery_level   INTEGER NOT NULL DEFAULT 0,
		last_seen       TIMESTAMP NOT NULL,
		last_correct    TIMESTAMP,
		needs_review    BOOLEAN NOT NULL DEFAULT FALSE,
		day_introduced  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (chat_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_item_mastery_review
		ON item_mastery (chat_id, day_introduced, mastery_level)`,
	`CREATE TABLE IF NOT EXISTS word_progress (
		chat_id       TEXT NOT NULL,
		word          TEXT NOT NULL,
		rank          INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL DEFAULT 'learning',
		times_seen    INTEGER NOT NULL DEFAULT 0,
		times_correct INTEGER NOT NULL DEFAULT 0,
		last_seen     TIMESTAMP NOT NULL,
		PRIMARY KEY (chat_id, word)
	)`,
	`CREATE TABLE IF NOT EXISTS learner_profiles (
		chat_id     TEXT PRIMARY KEY,
		current_day INTEGER NOT NULL DEFAULT 1,
		started_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lesson_completions (
		chat_id      TEXT NOT NULL,
		day_number   INTEGER NOT NULL,
		score        INTEGER NOT NULL DEFAULT 0,
		passed       BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lesson_completions_chat
		ON lesson_completions (chat_id, completed_at)`,
}

// Migrate creates the schema. Statements are idempotent and valid for both
// supported dialects.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
