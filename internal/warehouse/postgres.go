//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse persists dimension and fact tables in PostgreSQL, with
// an in-memory equivalent for tests.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retail-dw/internal/db"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

// Stats summarizes a persisted dimension.
type Stats struct {
	Dimension string
	Table     string
	Exists    bool
	Rows      int64
	Active    int64
	MaxKey    int64
}

// Postgres stores dimensions in a PostgreSQL schema. Every Load runs in a
// single transaction.
type Postgres struct {
	db db.DB
}

// NewPostgres creates a store over d.
func NewPostgres(d db.DB) *Postgres {
	return &Postgres{db: d}
}

// Snapshot implements scd.Store.
func (p *Postgres) Snapshot(ctx context.Context, shape *scd.Shape) (*scd.Snapshot, error) {
	exists, err := db.TableExists(ctx, p.db, shape.Schema, shape.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to check dimension %s: %w", shape.QualifiedName(), err)
	}
	if !exists {
		return nil, scd.ErrDimensionNotFound
	}

	active, err := p.readVersions(ctx, shape, true)
	if err != nil {
		return nil, err
	}

	snap := &scd.Snapshot{Active: active}
	err = p.db.QueryRow(ctx, keyStatsSQL(shape)).Scan(&snap.MaxKey, &snap.RowCount)
	if db.IsUndefinedTable(err) {
		return nil, scd.ErrDimensionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key statistics of %s: %w", shape.QualifiedName(), err)
	}

	logging.Debug().
		Str("dimension", shape.Name).
		Int("active", len(snap.Active)).
		Int64("max_key", snap.MaxKey).
		Int64("rows", snap.RowCount).
		Msg("Read dimension snapshot")

	return snap, nil
}

// Versions returns every row of the dimension, sentinels and history
// included.
func (p *Postgres) Versions(ctx context.Context, shape *scd.Shape) ([]scd.Version, error) {
	return p.readVersions(ctx, shape, false)
}

func (p *Postgres) readVersions(ctx context.Context, shape *scd.Shape, activeOnly bool) ([]scd.Version, error) {
	rows, err := p.db.Query(ctx, selectVersionsSQL(shape, activeOnly))
	if err != nil {
		if db.IsUndefinedTable(err) {
			return nil, scd.ErrDimensionNotFound
		}
		return nil, fmt.Errorf("failed to query %s: %w", shape.QualifiedName(), err)
	}
	defer rows.Close()

	var versions []scd.Version
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		v, err := decodeVersion(shape, values)
		if err != nil {
			return nil, fmt.Errorf("failed to decode row of %s: %w", shape.QualifiedName(), err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		if db.IsUndefinedTable(err) {
			return nil, scd.ErrDimensionNotFound
		}
		return nil, err
	}
	return versions, nil
}

// Load implements scd.Store.
func (p *Postgres) Load(ctx context.Context, shape *scd.Shape, plan *scd.Plan) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	switch plan.Mode {
	case scd.ModeReplace:
		err = p.create(ctx, tx, shape, plan)
	case scd.ModeAppend:
		err = p.applyChanges(ctx, tx, shape, plan)
	default:
		err = fmt.Errorf("unknown load mode %q", plan.Mode)
	}
	if err != nil {
		return err
	}

	if len(plan.Insert) > 0 {
		rows := make([][]any, len(plan.Insert))
		for i, v := range plan.Insert {
			rows[i] = encodeVersion(shape, v)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{shape.Schema, shape.Table}, shape.ColumnNames(), pgx.CopyFromRows(rows))
		if err != nil {
			if db.IsUniqueViolation(err) {
				return &scd.KeyCollisionError{
					Dimension:      shape.Name,
					ExpectedMaxKey: plan.ExpectedMaxKey,
					ActualMaxKey:   -1,
					ExpectedRows:   plan.ExpectedRows,
					ActualRows:     -1,
				}
			}
			return fmt.Errorf("failed to copy rows into %s: %w", shape.QualifiedName(), err)
		}
		if n != int64(len(rows)) {
			return fmt.Errorf("copied %d rows into %s, expected %d", n, shape.QualifiedName(), len(rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", shape.QualifiedName(), err)
	}
	committed = true

	logging.Debug().
		Str("dimension", shape.Name).
		Str("mode", string(plan.Mode)).
		Int("expired", len(plan.Expire)).
		Int("updated", len(plan.Update)).
		Int("inserted", len(plan.Insert)).
		Msg("Loaded dimension")

	return nil
}

// create builds the dimension table for a first load. The table must not
// exist; if another first load committed it after our snapshot, CREATE
// TABLE fails and the load reports a key collision.
func (p *Postgres) create(ctx context.Context, tx pgx.Tx, shape *scd.Shape, plan *scd.Plan) error {
	if _, err := tx.Exec(ctx, createSchemaSQL(shape.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", shape.Schema, err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(shape.Schema, shape.Table, dimensionColumns(shape), shape.SurrogateKey)); err != nil {
		if db.IsDuplicateTable(err) {
			return &scd.KeyCollisionError{
				Dimension:      shape.Name,
				ExpectedMaxKey: plan.ExpectedMaxKey,
				ActualMaxKey:   -1,
				ExpectedRows:   plan.ExpectedRows,
				ActualRows:     -1,
			}
		}
		return fmt.Errorf("failed to create %s: %w", shape.QualifiedName(), err)
	}
	for _, stmt := range createIndexesSQL(shape) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s: %w", shape.QualifiedName(), err)
		}
	}
	return nil
}

func (p *Postgres) applyChanges(ctx context.Context, tx pgx.Tx, shape *scd.Shape, plan *scd.Plan) error {
	if _, err := tx.Exec(ctx, lockTableSQL(shape)); err != nil {
		if db.IsUndefinedTable(err) {
			return scd.ErrDimensionNotFound
		}
		return fmt.Errorf("failed to lock %s: %w", shape.QualifiedName(), err)
	}

	var maxKey, rowCount int64
	if err := tx.QueryRow(ctx, keyStatsSQL(shape)).Scan(&maxKey, &rowCount); err != nil {
		return fmt.Errorf("failed to re-check %s: %w", shape.QualifiedName(), err)
	}
	if maxKey != plan.ExpectedMaxKey || rowCount != plan.ExpectedRows {
		return &scd.KeyCollisionError{
			Dimension:      shape.Name,
			ExpectedMaxKey: plan.ExpectedMaxKey,
			ActualMaxKey:   maxKey,
			ExpectedRows:   plan.ExpectedRows,
			ActualRows:     rowCount,
		}
	}

	// Expire before inserting so the active-row index never sees two
	// active versions of one natural key.
	for _, e := range plan.Expire {
		tag, err := tx.Exec(ctx, expireSQL(shape), e.ValidTo, e.SurrogateKey)
		if err != nil {
			return fmt.Errorf("failed to expire version %d of %s: %w", e.SurrogateKey, shape.QualifiedName(), err)
		}
		if tag.RowsAffected() != 1 {
			return &scd.StaleVersionError{Dimension: shape.Name, SurrogateKey: e.SurrogateKey}
		}
	}

	for _, u := range plan.Update {
		args := make([]any, 0, len(u.Values)+1)
		for _, v := range u.Values {
			args = append(args, encodeValue(v))
		}
		args = append(args, u.SurrogateKey)
		tag, err := tx.Exec(ctx, updateSQL(shape, u.Columns), args...)
		if err != nil {
			return fmt.Errorf("failed to update version %d of %s: %w", u.SurrogateKey, shape.QualifiedName(), err)
		}
		if tag.RowsAffected() != 1 {
			return &scd.StaleVersionError{Dimension: shape.Name, SurrogateKey: u.SurrogateKey}
		}
	}
	return nil
}

// Stats reports row counts for the status command.
func (p *Postgres) Stats(ctx context.Context, shape *scd.Shape) (*Stats, error) {
	st := &Stats{Dimension: shape.Name, Table: shape.QualifiedName()}
	exists, err := db.TableExists(ctx, p.db, shape.Schema, shape.Table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return st, nil
	}
	st.Exists = true
	if err := p.db.QueryRow(ctx, statsSQL(shape)).Scan(&st.Rows, &st.Active, &st.MaxKey); err != nil {
		return nil, fmt.Errorf("failed to read statistics of %s: %w", shape.QualifiedName(), err)
	}
	return st, nil
}

// ReplaceTable drops and recreates a plain table, such as the sales fact or
// a staging table, and copies rows into it in one transaction.
func (p *Postgres) ReplaceTable(ctx context.Context, schema, table string, columns []ColumnDef, rows [][]any) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	stmts := []string{
		createSchemaSQL(schema),
		dropTableSQL(schema, table),
		createTableSQL(schema, table, columns, ""),
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s.%s: %w", schema, table, err)
		}
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	if len(rows) > 0 {
		encoded := make([][]any, len(rows))
		for i, r := range rows {
			encoded[i] = make([]any, len(r))
			for j, v := range r {
				encoded[i][j] = encodeValue(v)
			}
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{schema, table}, names, pgx.CopyFromRows(encoded)); err != nil {
			return fmt.Errorf("failed to copy rows into %s.%s: %w", schema, table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s.%s: %w", schema, table, err)
	}
	committed = true
	return nil
}

func encodeVersion(shape *scd.Shape, v scd.Version) []any {
	row := make([]any, 0, len(v.Values)+5)
	row = append(row, v.SurrogateKey, v.NaturalKey)
	for _, val := range v.Values {
		row = append(row, encodeValue(val))
	}
	if shape.Versioned {
		var validTo any
		if v.ValidTo != nil {
			validTo = *v.ValidTo
		}
		row = append(row, v.Active, v.ValidFrom, validTo)
	}
	return row
}

// encodeValue converts decimals to pgtype.Numeric so they encode in the
// binary COPY protocol.
func encodeValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
	}
	return v
}

func decodeVersion(shape *scd.Shape, values []any) (scd.Version, error) {
	want := len(shape.ColumnNames())
	if len(values) != want {
		return scd.Version{}, fmt.Errorf("got %d columns, expected %d", len(values), want)
	}

	var v scd.Version
	sk, err := scd.KindInteger.Normalize(values[0])
	if err != nil {
		return v, err
	}
	nk, err := scd.KindInteger.Normalize(values[1])
	if err != nil {
		return v, err
	}
	v.SurrogateKey = sk.(int64)
	v.NaturalKey = nk.(int64)

	v.Values = make([]any, len(shape.Columns))
	for i, col := range shape.Columns {
		val, err := col.Kind.Normalize(values[2+i])
		if err != nil {
			return v, fmt.Errorf("column %s: %w", col.Name, err)
		}
		v.Values[i] = val
	}

	v.Active = true
	if !shape.Versioned {
		return v, nil
	}
	rest := values[2+len(shape.Columns):]
	if active, ok := rest[0].(bool); ok {
		v.Active = active
	}
	if from, ok := rest[1].(time.Time); ok {
		v.ValidFrom = from.UTC()
	}
	if to, ok := rest[2].(time.Time); ok {
		to = to.UTC()
		v.ValidTo = &to
	}
	return v, nil
}
