//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package scd implements the dimension reconciliation engine: change
// classification, surrogate key allocation, SCD Type 2 versioning, sentinel
// rows and point-in-time key resolution. Persistence is delegated to a Store.
package scd

import (
	"fmt"
	"strings"
	"time"
)

// Names of the validity columns carried by versioned dimensions.
const (
	ColumnIsActive  = "is_active"
	ColumnValidFrom = "valid_from"
	ColumnValidTo   = "valid_to"
)

// Policy decides what a change to an attribute does to the dimension.
type Policy int

const (
	// Cosmetic attributes are overwritten in place on the active row.
	Cosmetic Policy = iota
	// Tracked attributes open a new version when they change.
	Tracked
)

func (p Policy) String() string {
	if p == Tracked {
		return "tracked"
	}
	return "cosmetic"
}

// Column describes one descriptive attribute of a dimension.
type Column struct {
	Name   string
	Kind   Kind
	Policy Policy
}

// Shape is the typed descriptor of one dimension table. The engine is driven
// entirely by it; no dimension has its own reconciliation code.
type Shape struct {
	// Name is the logical dimension name (e.g. "cliente").
	Name string

	// Schema and Table locate the warehouse table.
	Schema string
	Table  string

	// SurrogateKey and NaturalKey are the key column names.
	SurrogateKey string
	NaturalKey   string

	// Columns are the descriptive attributes, in table order.
	Columns []Column

	// Versioned enables SCD Type 2 handling (is_active, valid_from, valid_to).
	// Unversioned shapes only accept cosmetic columns.
	Versioned bool
}

// Validate checks the descriptor for consistency.
func (s *Shape) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil shape", ErrInvalidShape)
	}
	if s.Name == "" || s.Table == "" {
		return fmt.Errorf("%w: name and table are required", ErrInvalidShape)
	}
	if s.SurrogateKey == "" || s.NaturalKey == "" {
		return fmt.Errorf("%w: %s: surrogate and natural key columns are required", ErrInvalidShape, s.Name)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: %s: at least one attribute column is required", ErrInvalidShape, s.Name)
	}

	seen := map[string]bool{
		s.SurrogateKey: true,
	}
	if seen[s.NaturalKey] {
		return fmt.Errorf("%w: %s: surrogate and natural key must differ", ErrInvalidShape, s.Name)
	}
	seen[s.NaturalKey] = true
	for _, reserved := range []string{ColumnIsActive, ColumnValidFrom, ColumnValidTo} {
		if seen[reserved] {
			return fmt.Errorf("%w: %s: column name %q is reserved", ErrInvalidShape, s.Name, reserved)
		}
	}

	for _, col := range s.Columns {
		if col.Name == "" {
			return fmt.Errorf("%w: %s: empty column name", ErrInvalidShape, s.Name)
		}
		switch col.Name {
		case ColumnIsActive, ColumnValidFrom, ColumnValidTo:
			return fmt.Errorf("%w: %s: column name %q is reserved", ErrInvalidShape, s.Name, col.Name)
		}
		if seen[col.Name] {
			return fmt.Errorf("%w: %s: duplicate column %q", ErrInvalidShape, s.Name, col.Name)
		}
		seen[col.Name] = true
		if !col.Kind.valid() {
			return fmt.Errorf("%w: %s: column %q has unknown kind", ErrInvalidShape, s.Name, col.Name)
		}
		if col.Policy == Tracked && !s.Versioned {
			return fmt.Errorf("%w: %s: tracked column %q on an unversioned dimension", ErrInvalidShape, s.Name, col.Name)
		}
	}
	return nil
}

// WithSchema returns a copy of the shape bound to another schema.
func (s *Shape) WithSchema(schema string) *Shape {
	c := *s
	c.Schema = schema
	c.Columns = append([]Column(nil), s.Columns...)
	return &c
}

// QualifiedName returns schema.table for logging.
func (s *Shape) QualifiedName() string {
	if s.Schema == "" {
		return s.Table
	}
	return s.Schema + "." + s.Table
}

// AttributeNames returns the descriptive column names in order.
func (s *Shape) AttributeNames() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnNames returns every physical column in table order.
func (s *Shape) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns)+5)
	names = append(names, s.SurrogateKey, s.NaturalKey)
	names = append(names, s.AttributeNames()...)
	if s.Versioned {
		names = append(names, ColumnIsActive, ColumnValidFrom, ColumnValidTo)
	}
	return names
}

// ColumnIndex returns the attribute position of name, or -1.
func (s *Shape) ColumnIndex(name string) int {
	for i, col := range s.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Normalize coerces a record's values to the canonical Go type of each
// column kind.
func (s *Shape) Normalize(r Record) (Record, error) {
	if len(r.Values) != len(s.Columns) {
		return Record{}, &RecordError{
			Dimension:  s.Name,
			NaturalKey: r.NaturalKey,
			Err:        fmt.Errorf("record has %d values, expected %d", len(r.Values), len(s.Columns)),
		}
	}
	values := make([]any, len(r.Values))
	for i, col := range s.Columns {
		v, err := col.Kind.Normalize(r.Values[i])
		if err != nil {
			return Record{}, &RecordError{
				Dimension:  s.Name,
				NaturalKey: r.NaturalKey,
				Column:     col.Name,
				Err:        err,
			}
		}
		values[i] = v
	}
	return Record{NaturalKey: r.NaturalKey, Values: values}, nil
}

// diff returns the names of tracked and cosmetic columns whose values differ.
func (s *Shape) diff(current, staged []any) (tracked, cosmetic []string) {
	for i, col := range s.Columns {
		if col.Kind.Equal(current[i], staged[i]) {
			continue
		}
		if col.Policy == Tracked {
			tracked = append(tracked, col.Name)
		} else {
			cosmetic = append(cosmetic, col.Name)
		}
	}
	return tracked, cosmetic
}

func (s *Shape) String() string {
	var b strings.Builder
	b.WriteString(s.QualifiedName())
	b.WriteString(" (")
	for i, col := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col.Name)
		if col.Policy == Tracked {
			b.WriteString("*")
		}
	}
	b.WriteString(")")
	return b.String()
}

// Record is one staged source row, already mapped to the shape's attribute
// order.
type Record struct {
	NaturalKey int64
	Values     []any
}

// Version is one persisted dimension row.
type Version struct {
	SurrogateKey int64
	NaturalKey   int64
	Values       []any
	ValidFrom    time.Time
	ValidTo      *time.Time
	Active       bool
}

// IsSentinel reports whether the row is one of the fixed placeholder rows.
func (v Version) IsSentinel() bool {
	return IsSentinelKey(v.SurrogateKey)
}

// Covers reports whether t falls inside the validity window
// [ValidFrom, ValidTo).
func (v Version) Covers(t time.Time) bool {
	if t.Before(v.ValidFrom) {
		return false
	}
	return v.ValidTo == nil || t.Before(*v.ValidTo)
}
