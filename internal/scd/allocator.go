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
	"fmt"
)

// Numbering selects where a new key block starts.
type Numbering string

const (
	// NumberingMaxKey starts after the highest persisted surrogate key.
	NumberingMaxKey Numbering = "max"
	// NumberingRowCount starts at the number of persisted rows, sentinels
	// included, but never at or below an existing key.
	NumberingRowCount Numbering = "row_count"
)

// ParseNumbering validates a numbering name. An empty string selects
// NumberingMaxKey.
func ParseNumbering(s string) (Numbering, error) {
	switch Numbering(s) {
	case "", NumberingMaxKey:
		return NumberingMaxKey, nil
	case NumberingRowCount:
		return NumberingRowCount, nil
	}
	return "", fmt.Errorf("invalid key numbering %q (expected %q or %q)", s, NumberingMaxKey, NumberingRowCount)
}

// Snapshot is the state of a persisted dimension read once per run.
type Snapshot struct {
	// Active holds the active non-sentinel rows.
	Active []Version
	// MaxKey is the highest surrogate key present, sentinels excluded.
	MaxKey int64
	// RowCount counts every persisted row, sentinels and history included.
	RowCount int64
}

// KeyBlock is a contiguous range of surrogate keys reserved for one run.
type KeyBlock struct {
	Start int64
	Count int
}

// Key returns the i-th key of the block.
func (b KeyBlock) Key(i int) int64 {
	return b.Start + int64(i)
}

// Last returns the last key of the block, or Start-1 when empty.
func (b KeyBlock) Last() int64 {
	return b.Start + int64(b.Count) - 1
}

// Allocate reserves count consecutive keys above everything recorded in the
// snapshot. A nil snapshot denotes an empty table and yields keys from 1.
func Allocate(snap *Snapshot, count int, numbering Numbering) (KeyBlock, error) {
	if count < 0 {
		return KeyBlock{}, fmt.Errorf("cannot allocate %d keys", count)
	}
	if snap == nil {
		return KeyBlock{Start: 1, Count: count}, nil
	}

	start := max(snap.MaxKey, 0) + 1
	switch numbering {
	case "", NumberingMaxKey:
	case NumberingRowCount:
		start = max(start, snap.RowCount)
	default:
		return KeyBlock{}, fmt.Errorf("invalid key numbering %q", numbering)
	}
	return KeyBlock{Start: start, Count: count}, nil
}
