package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the archive tables. recorded_at holds Unix nanoseconds so
// both drivers order and compare it the same way.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    action TEXT NOT NULL,
    session_id TEXT NOT NULL,

    solution_hash TEXT,
    model_name TEXT,
    mark_path TEXT,
    price TEXT,

    tree_ref TEXT,
    document TEXT,
    detail TEXT,

    recorded_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_recorded_at ON records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_records_action ON records(action);
CREATE INDEX IF NOT EXISTS idx_records_solution_hash ON records(solution_hash);
CREATE INDEX IF NOT EXISTS idx_records_session_id ON records(session_id);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const recordColumns = `id, action, session_id, solution_hash, model_name, mark_path, price, tree_ref, document, detail, recorded_at`
