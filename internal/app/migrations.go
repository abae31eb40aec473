package app

import "database/sql"

// The outbox table is raw SQL (no gorm entity) so its schema lives here
// rather than in AutoMigrate.
const createOutboxTable = `
CREATE TABLE IF NOT EXISTS outbox_events (
    id             UUID PRIMARY KEY,
    request_id     TEXT,
    aggregate_type TEXT NOT NULL,
    aggregate_id   TEXT NOT NULL,
    event_type     TEXT NOT NULL,
    topic          TEXT NOT NULL,
    payload        JSONB NOT NULL,
    status         TEXT NOT NULL DEFAULT 'pending',
    retry_count    INT NOT NULL DEFAULT 0,
    error_message  TEXT,
    next_retry_at  TIMESTAMPTZ,
    processed_at   TIMESTAMPTZ,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createOutboxPendingIndex = `
CREATE INDEX IF NOT EXISTS idx_outbox_events_status_created
    ON outbox_events (status, created_at)`

func ensureOutboxTable(db *sql.DB) error {
	if _, err := db.Exec(createOutboxTable); err != nil {
		return err
	}
	_, err := db.Exec(createOutboxPendingIndex)
	return err
}
