// internal/common/database/migrations.go
// Versioned schema migrations, applied once at startup.
// Each migration runs in its own transaction and is recorded in
// schema_migrations; already-applied versions are skipped.

package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				user_id BIGINT PRIMARY KEY,
				username TEXT,
				name TEXT,
				age INTEGER,
				city TEXT,
				profession TEXT,
				interests TEXT[] NOT NULL DEFAULT '{}',
				goals TEXT[] NOT NULL DEFAULT '{}',
				about TEXT,
				contact_link TEXT,
				contact_preference TEXT,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				profile_completed BOOLEAN NOT NULL DEFAULT FALSE,
				matches_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				last_active TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_users_eligible
				ON users(user_id) WHERE is_active AND profile_completed`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS matches (
				id BIGSERIAL PRIMARY KEY,
				user1_id BIGINT NOT NULL REFERENCES users(user_id),
				user2_id BIGINT NOT NULL REFERENCES users(user_id),
				score INTEGER NOT NULL,
				shared_interests TEXT[] NOT NULL DEFAULT '{}',
				is_forced BOOLEAN NOT NULL DEFAULT FALSE,
				status TEXT NOT NULL DEFAULT 'pending',
				user1_accepted BOOLEAN NOT NULL DEFAULT FALSE,
				user2_accepted BOOLEAN NOT NULL DEFAULT FALSE,
				succeeded BOOLEAN,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				accepted_at TIMESTAMPTZ,
				decided_at TIMESTAMPTZ,
				CONSTRAINT matches_distinct_users CHECK (user1_id < user2_id)
			)`,
			// At most one non-rejected match per pair; rejected history does not block
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_open_pair
				ON matches(user1_id, user2_id) WHERE status <> 'rejected'`,
			`CREATE INDEX IF NOT EXISTS idx_matches_pair ON matches(user1_id, user2_id)`,
			`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status)`,
		},
	},
	{
		version: 3,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS user_actions (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL,
				action_type TEXT NOT NULL,
				target_user_id BIGINT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_user_actions_user ON user_actions(user_id)`,
		},
	},
	{
		version: 4,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS match_rounds (
				id BIGSERIAL PRIMARY KEY,
				mode TEXT NOT NULL,
				requested_for DATE NOT NULL DEFAULT CURRENT_DATE,
				matches_created INTEGER NOT NULL DEFAULT 0,
				completed BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		version: 5,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS questions (
				id SERIAL PRIMARY KEY,
				question_text TEXT NOT NULL,
				question_order INTEGER NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			)`,
			`INSERT INTO questions (question_text, question_order)
			 SELECT q.text, q.ord FROM (VALUES
				('What is your name?', 1),
				('How old are you?', 2),
				('Which city are you in?', 3),
				('What do you do (profession or occupation)?', 4),
				('What are your interests or hobbies? (comma-separated)', 5),
				('What are you looking for? (new contacts, business, friends)', 6),
				('Tell us a bit about yourself', 7),
				('How do you prefer to be contacted?', 8)
			 ) AS q(text, ord)
			 WHERE NOT EXISTS (SELECT 1 FROM questions)`,
		},
	},
}

// Migrate applies all pending migrations in version order
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := db.Get(&current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}

		for _, stmt := range m.statements {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: recording version: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}

		log.Printf("Applied migration %d", m.version)
	}

	return nil
}
