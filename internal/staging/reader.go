//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package staging reads operational snapshots from the staging schema.
package staging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-retail-dw/internal/db"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
)

// ErrNotFound matches any NotFoundError.
var ErrNotFound = errors.New("staging table not found")

// NotFoundError reports a missing staging table.
type NotFoundError struct {
	Schema string
	Table  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("staging table %s.%s not found", e.Schema, e.Table)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Predicate is a parameterized WHERE clause. Placeholders use $1, $2, ...
// in the order of Args.
type Predicate struct {
	SQL  string
	Args []any
}

// ReadOptions narrows a read. The zero value selects every column of every
// row in table order.
type ReadOptions struct {
	Columns  []string
	Where    *Predicate
	Distinct bool
	OrderBy  []string

	// Observed breaks OrderBy ties by physical row position, so rows
	// staged under the same key come back in the order they were written.
	// It cannot be combined with Distinct.
	Observed bool
}

// Reader reads staging tables.
type Reader struct {
	db     db.DB
	schema string
}

// NewReader creates a reader for tables in schema.
func NewReader(d db.DB, schema string) *Reader {
	return &Reader{db: d, schema: schema}
}

// Schema returns the staging schema name.
func (r *Reader) Schema() string {
	return r.schema
}

// Read returns the matching rows of table. A missing table yields a
// *NotFoundError.
func (r *Reader) Read(ctx context.Context, table string, opts ReadOptions) (*Rows, error) {
	query := buildQuery(r.schema, table, opts)
	var args []any
	if opts.Where != nil {
		args = opts.Where.Args
	}

	logging.Debug().
		Str("table", r.schema+"."+table).
		Str("query", query).
		Msg("Reading staging table")

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.wrap(table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var values [][]any
	for rows.Next() {
		row, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s.%s: %w", r.schema, table, err)
		}
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap(table, err)
	}

	if len(columns) == 0 && len(opts.Columns) > 0 {
		columns = append(columns, opts.Columns...)
	}
	return NewRows(columns, values), nil
}

// Exists reports whether table is present in the staging schema.
func (r *Reader) Exists(ctx context.Context, table string) (bool, error) {
	return db.TableExists(ctx, r.db, r.schema, table)
}

func (r *Reader) wrap(table string, err error) error {
	if db.IsUndefinedTable(err) {
		return &NotFoundError{Schema: r.schema, Table: table}
	}
	return fmt.Errorf("failed to read %s.%s: %w", r.schema, table, err)
}

func buildQuery(schema, table string, opts ReadOptions) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if opts.Distinct {
		b.WriteString("DISTINCT ")
	}
	if len(opts.Columns) == 0 {
		b.WriteString("*")
	} else {
		for i, c := range opts.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(pgx.Identifier{c}.Sanitize())
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(pgx.Identifier{schema, table}.Sanitize())
	if opts.Where != nil && opts.Where.SQL != "" {
		b.WriteString(" WHERE ")
		b.WriteString(opts.Where.SQL)
	}
	order := make([]string, 0, len(opts.OrderBy)+1)
	for _, c := range opts.OrderBy {
		order = append(order, pgx.Identifier{c}.Sanitize())
	}
	if opts.Observed && !opts.Distinct {
		order = append(order, "ctid")
	}
	if len(order) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(order, ", "))
	}
	return b.String()
}
