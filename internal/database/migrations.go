package database

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Up      string
	Down    string
}

// Migrations contains all database migrations
var Migrations = []Migration{
	{
		Version: 1,
		Up: `
			CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				email VARCHAR(255) UNIQUE NOT NULL,
				display_name VARCHAR(255) NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				role VARCHAR(50) NOT NULL DEFAULT 'regular',
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
		`,
		Down: `
			DROP TABLE IF EXISTS users;
		`,
	},
	{
		Version: 2,
		Up: `
			CREATE TABLE IF NOT EXISTS posts (
				id BIGSERIAL PRIMARY KEY,
				author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				html TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);

			CREATE TABLE IF NOT EXISTS post_revisions (
				id BIGSERIAL PRIMARY KEY,
				post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
				author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				ip_addr VARCHAR(45) NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				approved BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_post_revisions_post ON post_revisions(post_id);
			CREATE INDEX IF NOT EXISTS idx_post_revisions_author ON post_revisions(author_id);

			CREATE TABLE IF NOT EXISTS post_flags (
				id BIGSERIAL PRIMARY KEY,
				post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
				flagged_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				UNIQUE(post_id, flagged_by)
			);

			CREATE INDEX IF NOT EXISTS idx_post_flags_post ON post_flags(post_id);
		`,
		Down: `
			DROP TABLE IF EXISTS post_flags;
			DROP TABLE IF EXISTS post_revisions;
			DROP TABLE IF EXISTS posts;
		`,
	},
	{
		Version: 3,
		Up: `
			CREATE TABLE IF NOT EXISTS flag_reasons (
				id BIGSERIAL PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				details TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS flag_reasons;
		`,
	},
	{
		Version: 4,
		Up: `
			CREATE TABLE IF NOT EXISTS activities (
				id BIGSERIAL PRIMARY KEY,
				kind VARCHAR(50) NOT NULL,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				content_kind VARCHAR(50) NOT NULL,
				content_id BIGINT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_activities_kind ON activities(kind);
			CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id);

			CREATE TABLE IF NOT EXISTS queue_memos (
				id BIGSERIAL PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				activity_id BIGINT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_queue_memos_user ON queue_memos(user_id);
			CREATE INDEX IF NOT EXISTS idx_queue_memos_activity ON queue_memos(activity_id);
		`,
		Down: `
			DROP TABLE IF EXISTS queue_memos;
			DROP TABLE IF EXISTS activities;
		`,
	},
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return err
	}

	// Run pending migrations in ascending order by version
	sorted := make([]Migration, len(Migrations))
	copy(sorted, Migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, migration := range sorted {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d...\n", migration.Version)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("Migration %d completed\n", migration.Version)
	}

	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func getCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
