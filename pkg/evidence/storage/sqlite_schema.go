package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the decision database
// schema.
const Schema = `
-- Policy decision records
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    -- Timestamps
    evaluated_time TIMESTAMP NOT NULL,
    recorded_time TIMESTAMP NOT NULL,

    -- Context
    tool TEXT NOT NULL,
    policy_id TEXT NOT NULL,
    policy_name TEXT,

    -- Order facts
    order_value REAL NOT NULL,
    quantity INTEGER NOT NULL,
    customer_segment TEXT,
    product_margin REAL NOT NULL,

    -- Decision
    proposed_discount REAL NOT NULL,
    calculated_margin REAL NOT NULL,
    approved BOOLEAN NOT NULL,
    violations TEXT,
    applied_rules TEXT,

    -- Solver context
    max_allowed REAL,
    limiting_factor TEXT,

    -- Timing, nanoseconds
    evaluation_duration INTEGER
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_decisions_evaluated_time ON decisions(evaluated_time);
CREATE INDEX IF NOT EXISTS idx_decisions_policy_id ON decisions(policy_id);
CREATE INDEX IF NOT EXISTS idx_decisions_tool ON decisions(tool);
CREATE INDEX IF NOT EXISTS idx_decisions_customer_segment ON decisions(customer_segment);
CREATE INDEX IF NOT EXISTS idx_decisions_approved ON decisions(approved);
CREATE INDEX IF NOT EXISTS idx_decisions_request_id ON decisions(request_id);
`

// InsertSchemaVersion inserts the schema version into the
// schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
