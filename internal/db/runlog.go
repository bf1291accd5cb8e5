//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
	"github.com/pgEdge/pgedge-retail-dw/pkg/version"
)

// RunLogTable is the name of the table recording reconciliation runs.
const RunLogTable = "etl_run_log"

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrNoRuns is returned when a dimension has never been reconciled.
var ErrNoRuns = errors.New("no runs recorded")

const createRunLogSQL = `
CREATE TABLE IF NOT EXISTS %s (
    run_id      UUID        NOT NULL,
    dimension   TEXT        NOT NULL,
    mode        TEXT        NOT NULL,
    status      TEXT        NOT NULL,
    inserted    INTEGER     NOT NULL DEFAULT 0,
    versioned   INTEGER     NOT NULL DEFAULT 0,
    updated     INTEGER     NOT NULL DEFAULT 0,
    unchanged   INTEGER     NOT NULL DEFAULT 0,
    duplicates  INTEGER     NOT NULL DEFAULT 0,
    first_key   BIGINT,
    last_key    BIGINT,
    error       TEXT,
    version     TEXT        NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (run_id, dimension)
)`

// RunEntry is one row of the run log.
type RunEntry struct {
	RunID      uuid.UUID
	Dimension  string
	Mode       string
	Status     string
	Inserted   int
	Versioned  int
	Updated    int
	Unchanged  int
	Duplicates int
	FirstKey   *int64
	LastKey    *int64
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunLog records reconciliation outcomes in the warehouse schema.
type RunLog struct {
	db     DB
	schema string
}

// NewRunLog creates a run log stored in schema.
func NewRunLog(d DB, schema string) *RunLog {
	return &RunLog{db: d, schema: schema}
}

func (l *RunLog) table() string {
	return pgx.Identifier{l.schema, RunLogTable}.Sanitize()
}

// Ensure creates the schema and run log table if they don't exist.
func (l *RunLog) Ensure(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{l.schema}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", l.schema, err)
	}
	if _, err := l.db.Exec(ctx, fmt.Sprintf(createRunLogSQL, l.table())); err != nil {
		return fmt.Errorf("failed to create run log table: %w", err)
	}
	return nil
}

// Save records one dimension outcome.
func (l *RunLog) Save(ctx context.Context, e RunEntry) error {
	var errText *string
	if e.Error != "" {
		errText = &e.Error
	}
	_, err := l.db.Exec(ctx, fmt.Sprintf(`
        INSERT INTO %s (run_id, dimension, mode, status, inserted, versioned,
            updated, unchanged, duplicates, first_key, last_key, error, version,
            started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (run_id, dimension) DO UPDATE SET
            mode = EXCLUDED.mode, status = EXCLUDED.status,
            inserted = EXCLUDED.inserted, versioned = EXCLUDED.versioned,
            updated = EXCLUDED.updated, unchanged = EXCLUDED.unchanged,
            duplicates = EXCLUDED.duplicates, first_key = EXCLUDED.first_key,
            last_key = EXCLUDED.last_key, error = EXCLUDED.error,
            finished_at = EXCLUDED.finished_at
    `, l.table()),
		e.RunID, e.Dimension, e.Mode, e.Status, e.Inserted, e.Versioned,
		e.Updated, e.Unchanged, e.Duplicates, e.FirstKey, e.LastKey, errText,
		version.Short(), e.StartedAt, e.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save run log entry for %s: %w", e.Dimension, err)
	}

	logging.Debug().
		Str("run_id", e.RunID.String()).
		Str("dimension", e.Dimension).
		Str("status", e.Status).
		Msg("Saved run log entry")

	return nil
}

// Last returns the most recent entry for a dimension, or ErrNoRuns.
func (l *RunLog) Last(ctx context.Context, dimension string) (*RunEntry, error) {
	var e RunEntry
	var errText *string
	err := l.db.QueryRow(ctx, fmt.Sprintf(`
        SELECT run_id, dimension, mode, status, inserted, versioned, updated,
            unchanged, duplicates, first_key, last_key, error, started_at, finished_at
        FROM %s
        WHERE dimension = $1
        ORDER BY finished_at DESC
        LIMIT 1
    `, l.table()), dimension).Scan(
		&e.RunID, &e.Dimension, &e.Mode, &e.Status, &e.Inserted, &e.Versioned,
		&e.Updated, &e.Unchanged, &e.Duplicates, &e.FirstKey, &e.LastKey, &errText,
		&e.StartedAt, &e.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) || IsUndefinedTable(err) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, err
	}
	if errText != nil {
		e.Error = *errText
	}
	return &e, nil
}
