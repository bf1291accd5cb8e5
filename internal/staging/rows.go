//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package staging

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

// Rows is an ordered, column-addressable result set.
type Rows struct {
	columns []string
	index   map[string]int
	values  [][]any
}

// NewRows wraps values whose cells follow columns.
func NewRows(columns []string, values [][]any) *Rows {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Rows{columns: columns, index: index, values: values}
}

// Columns returns the column names in result order.
func (r *Rows) Columns() []string {
	return r.columns
}

// Len returns the number of rows.
func (r *Rows) Len() int {
	return len(r.values)
}

// Has reports whether the result carries column.
func (r *Rows) Has(column string) bool {
	_, ok := r.index[column]
	return ok
}

// Row returns the raw cells of row i.
func (r *Rows) Row(i int) []any {
	return r.values[i]
}

// Value returns the raw cell at row i, column.
func (r *Rows) Value(i int, column string) (any, error) {
	j, ok := r.index[column]
	if !ok {
		return nil, fmt.Errorf("column %q not in result", column)
	}
	return r.values[i][j], nil
}

// IsNull reports whether the cell is NULL or absent.
func (r *Rows) IsNull(i int, column string) bool {
	v, err := r.Value(i, column)
	return err != nil || v == nil
}

// Int64 returns an integer cell. NULL is an error.
func (r *Rows) Int64(i int, column string) (int64, error) {
	v, err := r.Value(i, column)
	if err != nil {
		return 0, err
	}
	n, err := scd.KindInteger.Normalize(v)
	if err != nil {
		return 0, fmt.Errorf("row %d column %s: %w", i, column, err)
	}
	return n.(int64), nil
}

// NullInt64 returns an integer cell and whether it was non-NULL.
func (r *Rows) NullInt64(i int, column string) (int64, bool, error) {
	v, err := r.Value(i, column)
	if err != nil {
		return 0, false, err
	}
	if v == nil {
		return 0, false, nil
	}
	n, err := r.Int64(i, column)
	return n, err == nil, err
}

// String returns a text cell with surrounding whitespace removed. NULL
// becomes the empty string.
func (r *Rows) String(i int, column string) (string, error) {
	v, err := r.Value(i, column)
	if err != nil {
		return "", err
	}
	s, err := scd.KindText.Normalize(v)
	if err != nil {
		return "", fmt.Errorf("row %d column %s: %w", i, column, err)
	}
	return strings.TrimSpace(s.(string)), nil
}

// Decimal returns a numeric cell. Text cells may use a decimal comma.
func (r *Rows) Decimal(i int, column string) (decimal.Decimal, error) {
	v, err := r.Value(i, column)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := scd.KindNumeric.Normalize(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("row %d column %s: %w", i, column, err)
	}
	return d.(decimal.Decimal), nil
}

// Time returns a timestamp cell, parsing text in the common staging
// layouts.
func (r *Rows) Time(i int, column string) (time.Time, error) {
	v, err := r.Value(i, column)
	if err != nil {
		return time.Time{}, err
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("row %d column %s: invalid timestamp %q", i, column, t)
	case nil:
		return time.Time{}, fmt.Errorf("row %d column %s: timestamp is NULL", i, column)
	}
	return time.Time{}, fmt.Errorf("row %d column %s: cannot use %T as timestamp", i, column, v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}
