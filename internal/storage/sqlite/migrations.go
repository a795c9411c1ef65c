package sqlite

import (
	"context"
	"database/sql"
)

// Migrate runs all database migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		// Sessions table
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			project TEXT NOT NULL DEFAULT '',
			heuristic TEXT NOT NULL,
			status INTEGER NOT NULL,
			total_tests INTEGER NOT NULL DEFAULT 0,
			failed_tests INTEGER NOT NULL DEFAULT 0,
			requirements INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		)`,

		// Requirements table (one row per spectrum entry)
		`CREATE TABLE IF NOT EXISTS requirements (
			session_id TEXT NOT NULL,
			key TEXT NOT NULL,
			kind INTEGER NOT NULL,
			class_name TEXT NOT NULL,
			line INTEGER NOT NULL DEFAULT 0,
			method TEXT NOT NULL DEFAULT '',
			dua_id INTEGER NOT NULL DEFAULT 0,
			def_line INTEGER NOT NULL DEFAULT 0,
			use_line INTEGER NOT NULL DEFAULT 0,
			target_line INTEGER NOT NULL DEFAULT 0,
			var_name TEXT NOT NULL DEFAULT '',
			covered_passed INTEGER NOT NULL DEFAULT 0,
			covered_failed INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session_id, key),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		// Indexes for efficient queries
		`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project, created_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}
