//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

func seedCustomers(t *testing.T, m *Memory) *scd.Shape {
	t.Helper()
	shape := customerShape()
	plan, _, err := scd.PlanFirstLoad(shape, []scd.Record{
		{NaturalKey: 100, Values: []any{"Ana", int64(10)}},
		{NaturalKey: 200, Values: []any{"Bruno", int64(20)}},
	}, scd.DefaultPlaceholders(), scd.DefaultEpoch)
	require.NoError(t, err)
	require.NoError(t, m.Load(context.Background(), shape, plan))
	return shape
}

func TestMemorySnapshot(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Snapshot(ctx, customerShape())
	assert.ErrorIs(t, err, scd.ErrDimensionNotFound)

	shape := seedCustomers(t, m)
	snap, err := m.Snapshot(ctx, shape)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.MaxKey)
	assert.Equal(t, int64(5), snap.RowCount)
	assert.Len(t, snap.Active, 2)

	// Snapshots are copies.
	snap.Active[0].Values[0] = "changed"
	again, err := m.Snapshot(ctx, shape)
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.Active[0].Values[0])
}

func TestMemoryLoadAppend(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	shape := seedCustomers(t, m)

	require.NoError(t, m.Load(ctx, shape, appendPlan()))
	assert.Equal(t, 2, m.Loads())

	versions, err := m.Versions(ctx, shape)
	require.NoError(t, err)
	require.Len(t, versions, 6)

	byKey := make(map[int64]scd.Version)
	for _, v := range versions {
		byKey[v.SurrogateKey] = v
	}
	assert.False(t, byKey[1].Active)
	require.NotNil(t, byKey[1].ValidTo)
	assert.Equal(t, loadTime, *byKey[1].ValidTo)
	assert.Equal(t, "Bruno Lima", byKey[2].Values[0])
	assert.True(t, byKey[3].Active)
	assert.Equal(t, int64(100), byKey[3].NaturalKey)

	st, err := m.Stats(ctx, shape)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Dimension: "cliente", Table: "dw.d_cliente", Exists: true, Rows: 6, Active: 2, MaxKey: 3}, st)
}

func TestMemoryLoadKeyCollision(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	shape := seedCustomers(t, m)

	plan := appendPlan()
	plan.ExpectedMaxKey = 1

	var collision *scd.KeyCollisionError
	require.ErrorAs(t, m.Load(ctx, shape, plan), &collision)
	assert.Equal(t, int64(2), collision.ActualMaxKey)
	assert.Equal(t, 1, m.Loads())
}

func TestMemoryLoadIsAtomic(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	shape := seedCustomers(t, m)

	before, err := m.Versions(ctx, shape)
	require.NoError(t, err)

	plan := appendPlan()
	plan.Update = append(plan.Update, scd.Update{SurrogateKey: 42, Columns: []string{"no_cliente"}, Values: []any{"x"}})

	var stale *scd.StaleVersionError
	require.ErrorAs(t, m.Load(ctx, shape, plan), &stale)
	assert.Equal(t, int64(42), stale.SurrogateKey)

	after, err := m.Versions(ctx, shape)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMemoryLoadRejectsSecondActiveVersion(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	shape := seedCustomers(t, m)

	plan := appendPlan()
	plan.Expire = nil

	err := m.Load(ctx, shape, plan)
	assert.ErrorIs(t, err, scd.ErrMultipleActive)
}

func TestMemoryReplaceExistingTable(t *testing.T) {
	m := NewMemory()
	shape := seedCustomers(t, m)

	plan, _, err := scd.PlanFirstLoad(shape, []scd.Record{
		{NaturalKey: 300, Values: []any{"Caio", int64(30)}},
	}, scd.DefaultPlaceholders(), scd.DefaultEpoch)
	require.NoError(t, err)

	var collision *scd.KeyCollisionError
	require.ErrorAs(t, m.Load(context.Background(), shape, plan), &collision)

	snap, err := m.Snapshot(context.Background(), shape)
	require.NoError(t, err)
	assert.Len(t, snap.Active, 2)
}

func TestMemoryFailLoad(t *testing.T) {
	m := NewMemory()
	m.FailLoad = errors.New("disk full")

	shape := customerShape()
	plan, _, err := scd.PlanFirstLoad(shape, nil, scd.DefaultPlaceholders(), scd.DefaultEpoch)
	require.NoError(t, err)

	assert.EqualError(t, m.Load(context.Background(), shape, plan), "disk full")
	_, err = m.Snapshot(context.Background(), shape)
	assert.ErrorIs(t, err, scd.ErrDimensionNotFound)

	st, err := m.Stats(context.Background(), shape)
	require.NoError(t, err)
	assert.False(t, st.Exists)
}

func TestMemoryReplaceTable(t *testing.T) {
	m := NewMemory()
	cols := []ColumnDef{{Name: "sk_cliente", SQLType: "BIGINT"}}
	rows := [][]any{{int64(1)}, {int64(2)}}

	require.NoError(t, m.ReplaceTable(context.Background(), "dw", "f_venda", cols, rows))
	rows[0][0] = int64(99)

	f, ok := m.TableData("dw", "f_venda")
	require.True(t, ok)
	assert.Equal(t, cols, f.Columns)
	assert.Equal(t, [][]any{{int64(1)}, {int64(2)}}, f.Rows)

	_, ok = m.TableData("dw", "missing")
	assert.False(t, ok)
}
