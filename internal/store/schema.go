// Package store persists simulation runs and their biomarker curves to a
// SQLite database, so sweeps and comparisons can be queried later without
// re-integrating.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite run store.
const schemaV1 = `
-- One row per integration run
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    variant TEXT NOT NULL,       -- 'fkpp', 'coupled', 'linear', 'exp' or 'custom'
    created_at TEXT NOT NULL,

    -- Run shape
    nodes INTEGER NOT NULL,
    steps INTEGER NOT NULL,
    tmax REAL NOT NULL,
    dt REAL NOT NULL,

    -- Full configuration for reproducibility (JSON)
    config TEXT NOT NULL
);

-- Sampled summary curves per run: the global load and stage means
CREATE TABLE IF NOT EXISTS curves (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    series TEXT NOT NULL,        -- 'global' or a stage name
    step INTEGER NOT NULL,
    t REAL NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (run_id, series, step)
);

CREATE INDEX IF NOT EXISTS idx_curves_run_series ON curves(run_id, series);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InitSchema creates the tables if they do not exist and records the schema
// version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("store: record schema version: %w", err)
	}
	return nil
}
