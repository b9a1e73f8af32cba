package datastore

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is valid for both PostgreSQL and SQLite. meals.date holds epoch
// milliseconds; meals.updated_at holds a preformatted display string.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		session_id TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_session_id ON users (session_id)`,
	`CREATE TABLE IF NOT EXISTS meals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users (id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date BIGINT NOT NULL,
		its_within_the_diet BOOLEAN NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meals_user_date ON meals (user_id, date)`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
