//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/calendar"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/dimensionstest"
)

func TestKey(t *testing.T) {
	assert.Equal(t, int64(20240310), calendar.Key(time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, int64(19991231), calendar.Key(time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC)))

	brt := time.FixedZone("BRT", -3*60*60)
	assert.Equal(t, int64(20240311), calendar.Key(time.Date(2024, time.March, 10, 22, 0, 0, 0, brt)))
}

func TestDay(t *testing.T) {
	sat := calendar.Day(time.Date(2024, time.August, 10, 9, 30, 0, 0, time.UTC))
	assert.Equal(t, int64(20240810), sat.NaturalKey)
	assert.Equal(t, []any{
		time.Date(2024, time.August, 10, 0, 0, 0, 0, time.UTC),
		int64(2024), int64(8), int64(10), int64(3),
		"Sábado", true,
	}, sat.Values)

	wed := calendar.Day(time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Quarta-feira", wed.Values[5])
	assert.Equal(t, int64(1), wed.Values[4])
	assert.Equal(t, false, wed.Values[6])
}

func TestExtract(t *testing.T) {
	reader := dimensionstest.NewReader().Table("stg_venda", []string{"data_venda"},
		[]any{time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)},
		[]any{time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC)},
		[]any{nil},
		[]any{"2024-03-02 10:00:00"},
	)

	records, err := (&calendar.Calendar{}).Extract(context.Background(), dimensions.Source{Reader: reader})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(20240301), records[0].NaturalKey)
	assert.Equal(t, int64(20240302), records[1].NaturalKey)
	assert.Equal(t, "Sábado", records[1].Values[5])
}

func TestShape(t *testing.T) {
	shape := calendar.Shape()
	require.NoError(t, shape.Validate())
	assert.False(t, shape.Versioned)
	assert.Len(t, shape.Columns, 7)
}
