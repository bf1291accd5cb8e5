//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package scd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name      string
		snap      *scd.Snapshot
		count     int
		numbering scd.Numbering
		wantStart int64
	}{
		{"empty table", nil, 5, scd.NumberingMaxKey, 1},
		{"sentinels only", &scd.Snapshot{MaxKey: 0, RowCount: 3}, 2, scd.NumberingMaxKey, 1},
		{"after max key", &scd.Snapshot{MaxKey: 10, RowCount: 13}, 3, scd.NumberingMaxKey, 11},
		{"row count after first load", &scd.Snapshot{MaxKey: 1, RowCount: 4}, 1, scd.NumberingRowCount, 4},
		{"row count never reuses keys", &scd.Snapshot{MaxKey: 9, RowCount: 5}, 1, scd.NumberingRowCount, 10},
		{"zero keys", &scd.Snapshot{MaxKey: 4, RowCount: 7}, 0, scd.NumberingMaxKey, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := scd.Allocate(tt.snap, tt.count, tt.numbering)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, block.Start)
			assert.Equal(t, tt.count, block.Count)
			assert.Equal(t, tt.wantStart+int64(tt.count)-1, block.Last())
		})
	}
}

func TestAllocateErrors(t *testing.T) {
	_, err := scd.Allocate(nil, -1, scd.NumberingMaxKey)
	assert.Error(t, err)

	_, err = scd.Allocate(&scd.Snapshot{}, 1, scd.Numbering("random"))
	assert.Error(t, err)
}

func TestAllocateIsMonotonic(t *testing.T) {
	snap := &scd.Snapshot{MaxKey: 0, RowCount: 3}
	var last int64
	for run := 0; run < 5; run++ {
		block, err := scd.Allocate(snap, 4, scd.NumberingRowCount)
		require.NoError(t, err)
		assert.Greater(t, block.Start, last)
		last = block.Last()
		snap.MaxKey = block.Last()
		snap.RowCount += int64(block.Count)
	}
}

func TestParseNumbering(t *testing.T) {
	n, err := scd.ParseNumbering("")
	require.NoError(t, err)
	assert.Equal(t, scd.NumberingMaxKey, n)

	n, err = scd.ParseNumbering("row_count")
	require.NoError(t, err)
	assert.Equal(t, scd.NumberingRowCount, n)

	_, err = scd.ParseNumbering("sequence")
	assert.Error(t, err)
}
