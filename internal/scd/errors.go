//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package scd

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionNotFound is returned by a Store when the dimension table
	// does not exist yet. The reconciler treats it as a first run.
	ErrDimensionNotFound = errors.New("dimension table not found")

	// ErrInvalidShape marks a malformed dimension descriptor.
	ErrInvalidShape = errors.New("invalid dimension shape")

	// ErrMultipleActive marks a persisted dimension holding more than one
	// active row for the same natural key.
	ErrMultipleActive = errors.New("more than one active version")
)

// LoadError wraps a failure while persisting a plan. Nothing was written.
type LoadError struct {
	Dimension string
	Mode      Mode
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load dimension %s (%s): %v", e.Dimension, e.Mode, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// KeyCollisionError reports that the persisted dimension moved between the
// snapshot and the write, so the allocated key block may overlap keys that
// already exist.
type KeyCollisionError struct {
	Dimension      string
	ExpectedMaxKey int64
	ActualMaxKey   int64
	ExpectedRows   int64
	ActualRows     int64
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("dimension %s changed since snapshot (max key %d -> %d, rows %d -> %d)",
		e.Dimension, e.ExpectedMaxKey, e.ActualMaxKey, e.ExpectedRows, e.ActualRows)
}

// StaleVersionError reports that a row the plan expected to be active was
// no longer active, or no longer present, at write time.
type StaleVersionError struct {
	Dimension    string
	SurrogateKey int64
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("dimension %s: version %d is no longer active", e.Dimension, e.SurrogateKey)
}

// RecordError reports a staged record that could not be used.
type RecordError struct {
	Dimension  string
	NaturalKey int64
	Column     string
	Err        error
}

func (e *RecordError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("dimension %s: natural key %d: column %s: %v", e.Dimension, e.NaturalKey, e.Column, e.Err)
	}
	return fmt.Sprintf("dimension %s: natural key %d: %v", e.Dimension, e.NaturalKey, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
