package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Statements are idempotent and valid
// for both SQLite and Postgres.
func Migrate(db *sql.DB) error {
	return migrate(db, migrations)
}

func migrate(db *sql.DB, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	// parent_id has no foreign key; tree structure is checked on load.
	`CREATE TABLE IF NOT EXISTS project_items (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_id   TEXT,
		type        TEXT NOT NULL,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		attributes  TEXT NOT NULL DEFAULT '{}',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_project_items_project ON project_items(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_project_items_parent ON project_items(parent_id)`,

	// One root per project.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_project_items_root
		ON project_items(project_id) WHERE parent_id IS NULL`,
}
