package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Notifier is told which feed topics changed after a write commits.
type Notifier interface {
	Notify(topics ...string)
}

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	notifier Notifier
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to :memory: would get its own empty database.
	if strings.Contains(dataSourceName, ":memory:") || strings.Contains(dataSourceName, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &DB{DB: db}, nil
}

// SetNotifier registers the receiver of change notifications.
func (db *DB) SetNotifier(n Notifier) {
	db.notifier = n
}

func (db *DB) notify(topics ...string) {
	if db.notifier != nil {
		db.notifier.Notify(topics...)
	}
}

// RunMigrations creates the schema if it does not exist yet
func (db *DB) RunMigrations() error {
	migration := `
-- Projects. Each row carries the three schedule periods inline.
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    project_code TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL,
    responsible_person TEXT NOT NULL,
    is_closed INTEGER NOT NULL DEFAULT 0,

    previous_activity TEXT NOT NULL DEFAULT '',
    previous_start TIMESTAMP,
    previous_end TIMESTAMP,
    previous_notes TEXT NOT NULL DEFAULT '',
    previous_remark TEXT NOT NULL DEFAULT '',

    planned_activity TEXT NOT NULL DEFAULT '',
    planned_start TIMESTAMP,
    planned_end TIMESTAMP,
    planned_notes TEXT NOT NULL DEFAULT '',

    next_activity TEXT NOT NULL DEFAULT '',
    next_start TIMESTAMP,
    next_end TIMESTAMP,
    next_notes TEXT NOT NULL DEFAULT '',

    last_update_date TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_projects_closed ON projects(is_closed);

-- Audit trail of tracked field edits. No foreign key: archival cleans up.
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    type TEXT NOT NULL CHECK(type IN ('NOTE', 'REMARK')),
    field TEXT NOT NULL,
    old_value TEXT NOT NULL DEFAULT '',
    new_value TEXT NOT NULL DEFAULT '',
    editor_id TEXT NOT NULL DEFAULT '',
    editor_name TEXT NOT NULL DEFAULT '',
    timestamp TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_project ON audit_records(project_id);

-- Field reports.
CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    report TEXT NOT NULL,
    reporter_id TEXT NOT NULL DEFAULT '',
    reporter_name TEXT NOT NULL DEFAULT '',
    timestamp TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_project ON reports(project_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
