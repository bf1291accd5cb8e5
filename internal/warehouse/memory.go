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
	"fmt"
	"sort"
	"sync"

	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

// Memory is an in-process warehouse used by tests and dry runs. Plans are
// applied to a copy of the table which replaces the original only when
// every step succeeds.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]scd.Version
	plain  map[string]*TableData

	// FailLoad, when set, is returned by Load before anything is applied.
	FailLoad error

	// BeforeLoad runs at the start of Load without the lock held.
	BeforeLoad func(shape *scd.Shape)

	loads int
}

// TableData is a plain table, such as a fact or staging table, held by Memory.
type TableData struct {
	Columns []ColumnDef
	Rows    [][]any
}

// NewMemory creates an empty in-memory warehouse.
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]scd.Version),
		plain:  make(map[string]*TableData),
	}
}

func memKey(schema, table string) string {
	return schema + "." + table
}

// Snapshot implements scd.Store.
func (m *Memory) Snapshot(ctx context.Context, shape *scd.Shape) (*scd.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[memKey(shape.Schema, shape.Table)]
	if !ok {
		return nil, scd.ErrDimensionNotFound
	}
	snap := &scd.Snapshot{RowCount: int64(len(rows))}
	for _, v := range rows {
		if v.IsSentinel() {
			continue
		}
		snap.MaxKey = max(snap.MaxKey, v.SurrogateKey)
		if v.Active {
			snap.Active = append(snap.Active, cloneVersion(v))
		}
	}
	return snap, nil
}

// Load implements scd.Store.
func (m *Memory) Load(ctx context.Context, shape *scd.Shape, plan *scd.Plan) error {
	if m.BeforeLoad != nil {
		m.BeforeLoad(shape)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailLoad != nil {
		return m.FailLoad
	}

	key := memKey(shape.Schema, shape.Table)
	var rows []scd.Version

	switch plan.Mode {
	case scd.ModeReplace:
		if _, ok := m.tables[key]; ok {
			return &scd.KeyCollisionError{
				Dimension:      shape.Name,
				ExpectedMaxKey: plan.ExpectedMaxKey,
				ActualMaxKey:   -1,
				ExpectedRows:   plan.ExpectedRows,
				ActualRows:     -1,
			}
		}
		rows = make([]scd.Version, 0, len(plan.Insert))
	case scd.ModeAppend:
		current, ok := m.tables[key]
		if !ok {
			return scd.ErrDimensionNotFound
		}
		var maxKey int64
		for _, v := range current {
			if !v.IsSentinel() {
				maxKey = max(maxKey, v.SurrogateKey)
			}
		}
		if maxKey != plan.ExpectedMaxKey || int64(len(current)) != plan.ExpectedRows {
			return &scd.KeyCollisionError{
				Dimension:      shape.Name,
				ExpectedMaxKey: plan.ExpectedMaxKey,
				ActualMaxKey:   maxKey,
				ExpectedRows:   plan.ExpectedRows,
				ActualRows:     int64(len(current)),
			}
		}
		rows = make([]scd.Version, len(current), len(current)+len(plan.Insert))
		for i, v := range current {
			rows[i] = cloneVersion(v)
		}
	default:
		return fmt.Errorf("unknown load mode %q", plan.Mode)
	}

	index := make(map[int64]int, len(rows))
	for i, v := range rows {
		index[v.SurrogateKey] = i
	}

	for _, e := range plan.Expire {
		i, ok := index[e.SurrogateKey]
		if !ok || !rows[i].Active {
			return &scd.StaleVersionError{Dimension: shape.Name, SurrogateKey: e.SurrogateKey}
		}
		validTo := e.ValidTo
		rows[i].Active = false
		rows[i].ValidTo = &validTo
	}

	for _, u := range plan.Update {
		i, ok := index[u.SurrogateKey]
		if !ok || !rows[i].Active {
			return &scd.StaleVersionError{Dimension: shape.Name, SurrogateKey: u.SurrogateKey}
		}
		for j, name := range u.Columns {
			col := shape.ColumnIndex(name)
			if col < 0 {
				return fmt.Errorf("dimension %s: unknown column %q", shape.Name, name)
			}
			rows[i].Values[col] = u.Values[j]
		}
	}

	active := make(map[int64]bool)
	for _, v := range rows {
		if v.Active && !v.IsSentinel() {
			active[v.NaturalKey] = true
		}
	}
	for _, v := range plan.Insert {
		if _, dup := index[v.SurrogateKey]; dup {
			return fmt.Errorf("dimension %s: duplicate surrogate key %d", shape.Name, v.SurrogateKey)
		}
		if v.Active && !v.IsSentinel() {
			if active[v.NaturalKey] {
				return fmt.Errorf("dimension %s: natural key %d: %w", shape.Name, v.NaturalKey, scd.ErrMultipleActive)
			}
			active[v.NaturalKey] = true
		}
		index[v.SurrogateKey] = len(rows)
		rows = append(rows, cloneVersion(v))
	}

	m.tables[key] = rows
	m.loads++
	return nil
}

// Versions returns every row of a dimension ordered by surrogate key.
func (m *Memory) Versions(ctx context.Context, shape *scd.Shape) ([]scd.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[memKey(shape.Schema, shape.Table)]
	if !ok {
		return nil, scd.ErrDimensionNotFound
	}
	out := make([]scd.Version, len(rows))
	for i, v := range rows {
		out[i] = cloneVersion(v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SurrogateKey < out[j].SurrogateKey
	})
	return out, nil
}

// Stats implements the status report for in-memory dimensions.
func (m *Memory) Stats(ctx context.Context, shape *scd.Shape) (*Stats, error) {
	st := &Stats{Dimension: shape.Name, Table: shape.QualifiedName()}
	rows, err := m.Versions(ctx, shape)
	if errors.Is(err, scd.ErrDimensionNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, err
	}
	st.Exists = true
	for _, v := range rows {
		st.Rows++
		if v.IsSentinel() {
			continue
		}
		st.MaxKey = max(st.MaxKey, v.SurrogateKey)
		if v.Active {
			st.Active++
		}
	}
	return st, nil
}

// ReplaceTable stores rows as the full content of a table.
func (m *Memory) ReplaceTable(ctx context.Context, schema, table string, columns []ColumnDef, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLoad != nil {
		return m.FailLoad
	}
	copied := make([][]any, len(rows))
	for i, r := range rows {
		copied[i] = append([]any(nil), r...)
	}
	m.plain[memKey(schema, table)] = &TableData{
		Columns: append([]ColumnDef(nil), columns...),
		Rows:    copied,
	}
	return nil
}

// TableData returns a table written by ReplaceTable.
func (m *Memory) TableData(schema, table string) (*TableData, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.plain[memKey(schema, table)]
	return f, ok
}

// Put writes rows directly into a dimension, bypassing plan checks. It is
// meant for seeding tests and simulating concurrent writers.
func (m *Memory) Put(shape *scd.Shape, versions ...scd.Version) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(shape.Schema, shape.Table)
	for _, v := range versions {
		m.tables[key] = append(m.tables[key], cloneVersion(v))
	}
}

// Loads returns the number of plans applied successfully.
func (m *Memory) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

func cloneVersion(v scd.Version) scd.Version {
	c := v
	c.Values = append([]any(nil), v.Values...)
	if v.ValidTo != nil {
		t := *v.ValidTo
		c.ValidTo = &t
	}
	return c
}
