//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dimensionstest provides an in-memory staging reader for tests.
package dimensionstest

import (
	"context"
	"sync"

	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

// Reader serves staging tables from memory. Read options are recorded but
// not applied: rows come back exactly as registered, which is the order an
// Observed read returns for rows tied on OrderBy.
type Reader struct {
	mu      sync.Mutex
	tables  map[string]*staging.Rows
	reads   []string
	options map[string]staging.ReadOptions
}

// NewReader returns an empty reader.
func NewReader() *Reader {
	return &Reader{
		tables:  make(map[string]*staging.Rows),
		options: make(map[string]staging.ReadOptions),
	}
}

// Table registers the contents of a staging table and returns r.
func (r *Reader) Table(name string, columns []string, rows ...[]any) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[name] = staging.NewRows(columns, rows)
	return r
}

// Read implements dimensions.Reader.
func (r *Reader) Read(_ context.Context, table string, opts staging.ReadOptions) (*staging.Rows, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads = append(r.reads, table)
	r.options[table] = opts
	rows, ok := r.tables[table]
	if !ok {
		return nil, &staging.NotFoundError{Schema: "stage", Table: table}
	}
	return rows, nil
}

// Reads returns the tables read so far, in order.
func (r *Reader) Reads() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reads...)
}

// Options returns the options of the last read of table.
func (r *Reader) Options(table string) (staging.ReadOptions, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opts, ok := r.options[table]
	return opts, ok
}
