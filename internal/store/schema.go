package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableResults       = "results"
	tableSessionEvents = "session_events"
	tableLLMEvents     = "llm_request_events"
	tablePreferences   = "preferences"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		score INTEGER NOT NULL,
		max_score INTEGER NOT NULL,
		band_title TEXT NOT NULL,
		style_tag TEXT NOT NULL DEFAULT '',
		answers TEXT NOT NULL DEFAULT '{}',
		complete INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS results_created_at ON results (created_at)`,
	`CREATE TABLE IF NOT EXISTS session_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		action TEXT NOT NULL,
		phase_from TEXT NOT NULL DEFAULT '',
		phase_to TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS session_events_session ON session_events (session_id)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
}

// addedColumns lists columns introduced after their table was first
// released. CREATE TABLE IF NOT EXISTS leaves older databases without them.
var addedColumns = []struct {
	table, column, decl string
}{
	{tableLLMEvents, "session_id", "TEXT NOT NULL DEFAULT ''"},
}

// migrate creates missing tables and columns. The schema only ever grows.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	for _, c := range addedColumns {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, c.table, c.column,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", c.table, err)
		}
		if n > 0 {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.decl)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add %s.%s: %w", c.table, c.column, err)
		}
	}
	return nil
}
