package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// migrations are applied in order on every open. Statements are written
// to be re-runnable: CREATE ... IF NOT EXISTS, and ALTER TABLE failures
// from already-applied column additions are tolerated.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS allocations (
		change_id   TEXT PRIMARY KEY,
		change_type TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		issued_at   TEXT NOT NULL,
		UNIQUE(change_type, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS changes (
		id               TEXT PRIMARY KEY,
		change_type      TEXT NOT NULL,
		title            TEXT NOT NULL,
		target_milestone TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL
		                 CHECK(status IN ('planning','in_progress','complete')),
		created_at       TEXT NOT NULL,
		closed_at        TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS documents (
		change_id     TEXT PRIMARY KEY REFERENCES changes(id) ON DELETE CASCADE,
		current_phase TEXT NOT NULL,
		archived_at   TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sections (
		change_id           TEXT NOT NULL REFERENCES documents(change_id) ON DELETE CASCADE,
		name                TEXT NOT NULL,
		body                TEXT NOT NULL DEFAULT '',
		is_placeholder      INTEGER NOT NULL DEFAULT 1,
		last_modified_phase TEXT NOT NULL,
		order_index         INTEGER NOT NULL DEFAULT 0,
		updated_at          TEXT NOT NULL,
		PRIMARY KEY (change_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS checklist_items (
		id          TEXT PRIMARY KEY,
		change_id   TEXT NOT NULL REFERENCES documents(change_id) ON DELETE CASCADE,
		phase       TEXT NOT NULL,
		description TEXT NOT NULL,
		done        INTEGER NOT NULL DEFAULT 0,
		parent_id   TEXT REFERENCES checklist_items(id) ON DELETE CASCADE,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_checklist_change_phase ON checklist_items(change_id, phase)`,
	`CREATE INDEX IF NOT EXISTS idx_checklist_parent ON checklist_items(parent_id)`,

	`CREATE TABLE IF NOT EXISTS considerations (
		change_id  TEXT NOT NULL REFERENCES documents(change_id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL
		           CHECK(status IN ('pending_review','resolved')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (change_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS consideration_events (
		id        TEXT PRIMARY KEY,
		change_id TEXT NOT NULL,
		seq       INTEGER NOT NULL,
		kind      TEXT NOT NULL,
		detail    TEXT NOT NULL DEFAULT '',
		at        TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_consideration_events ON consideration_events(change_id, seq)`,

	`CREATE TABLE IF NOT EXISTS external_refs (
		change_id      TEXT NOT NULL REFERENCES documents(change_id) ON DELETE CASCADE,
		local_anchor   TEXT NOT NULL,
		external_id    TEXT NOT NULL,
		url            TEXT NOT NULL DEFAULT '',
		sync_state     TEXT NOT NULL
		               CHECK(sync_state IN ('unposted','posted','stale')),
		last_posted_at TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL,
		PRIMARY KEY (change_id, local_anchor)
	)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
