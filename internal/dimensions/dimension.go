//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dimensions defines the dimension interface and registry. Each
// dimension lives in its own subpackage and registers itself from init().
package dimensions

import (
	"context"

	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

// Reader is the part of staging.Reader a dimension needs.
type Reader interface {
	Read(ctx context.Context, table string, opts staging.ReadOptions) (*staging.Rows, error)
}

// Source is what a dimension extracts from.
type Source struct {
	Reader Reader

	// Placeholders label attributes that fall back to a sentinel, such as
	// a customer whose address reference is missing.
	Placeholders scd.Placeholders
}

// Dimension defines the interface that all dimensions must implement.
type Dimension interface {
	// Name returns the dimension name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Shape returns the table descriptor with an empty schema.
	Shape() *scd.Shape

	// Extract reads the staging tables and maps them to records in the
	// shape's attribute order.
	Extract(ctx context.Context, src Source) ([]scd.Record, error)
}
