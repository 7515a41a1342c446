package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database
// schema.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id TEXT PRIMARY KEY,
    evaluated_at TIMESTAMP NOT NULL,

    policy_id TEXT NOT NULL,
    policy_version TEXT NOT NULL,

    decision TEXT NOT NULL,
    total_files INTEGER NOT NULL,
    added_lines INTEGER NOT NULL,
    removed_lines INTEGER NOT NULL,

    -- Violation list serialized as JSON
    violations TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_evaluated_at ON audit_records(evaluated_at);
CREATE INDEX IF NOT EXISTS idx_audit_decision ON audit_records(decision);
CREATE INDEX IF NOT EXISTS idx_audit_policy_id ON audit_records(policy_id);

CREATE TABLE IF NOT EXISTS schema_info (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version, ignoring conflicts so
// reopening an existing database is a no-op.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_info (version) VALUES (?);`
