package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the evidence database schema.
//
// Timestamps are Unix nanoseconds and durations are milliseconds so that
// range filters and sorting compare integers.
const Schema = `
-- Relay evidence records
CREATE TABLE IF NOT EXISTS relay_evidence (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    message_count INTEGER NOT NULL DEFAULT 0,

    outcome TEXT NOT NULL,
    error_kind TEXT,
    error_message TEXT,

    content_events INTEGER NOT NULL DEFAULT 0,
    content_bytes INTEGER NOT NULL DEFAULT 0,

    started_at INTEGER NOT NULL,
    first_content_ms INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    recorded_at INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_relay_evidence_started_at ON relay_evidence(started_at);
CREATE INDEX IF NOT EXISTS idx_relay_evidence_provider ON relay_evidence(provider);
CREATE INDEX IF NOT EXISTS idx_relay_evidence_outcome ON relay_evidence(outcome);
CREATE INDEX IF NOT EXISTS idx_relay_evidence_request_id ON relay_evidence(request_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO relay_evidence (
    id, request_id,
    provider, model, message_count,
    outcome, error_kind, error_message,
    content_events, content_bytes,
    started_at, first_content_ms, duration_ms, recorded_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `id, request_id, provider, model, message_count,
    outcome, error_kind, error_message, content_events, content_bytes,
    started_at, first_content_ms, duration_ms, recorded_at`
