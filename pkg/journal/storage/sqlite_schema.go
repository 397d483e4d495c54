package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the journal schema. It is
// valid for both SQLite drivers.
//
// Timestamps are stored as Unix nanoseconds and durations as microseconds
// so filtering and ordering stay integer comparisons.
const Schema = `
-- Exchange journal
CREATE TABLE IF NOT EXISTS exchanges (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    -- Timestamps
    started_at INTEGER NOT NULL,
    duration_us INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL,

    -- Request
    method TEXT NOT NULL,
    path TEXT NOT NULL,
    query TEXT,
    request_headers TEXT,
    request_bytes INTEGER NOT NULL DEFAULT 0,
    client_ip TEXT,

    -- Response
    status_code INTEGER NOT NULL DEFAULT 0,
    response_headers TEXT,
    response_bytes INTEGER NOT NULL DEFAULT 0,

    -- Failure
    failure_kind TEXT,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_exchanges_started_at ON exchanges(started_at);
CREATE INDEX IF NOT EXISTS idx_exchanges_request_id ON exchanges(request_id);
CREATE INDEX IF NOT EXISTS idx_exchanges_status_code ON exchanges(status_code);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// InsertSchemaVersion records the applied schema version.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)`

// GetSchemaVersion reads the newest applied schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`

const exchangeColumns = `id, request_id, started_at, duration_us, recorded_at,
	method, path, query, request_headers, request_bytes, client_ip,
	status_code, response_headers, response_bytes, failure_kind, error`
