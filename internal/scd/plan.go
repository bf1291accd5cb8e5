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
	"time"
)

// Mode selects how a Store persists a plan.
type Mode string

const (
	// ModeReplace creates the table from scratch with the plan's inserts.
	ModeReplace Mode = "replace"
	// ModeAppend expires, updates and inserts against an existing table.
	ModeAppend Mode = "append"
)

// Expiry closes the validity window of an active row.
type Expiry struct {
	SurrogateKey int64
	NaturalKey   int64
	ValidTo      time.Time
}

// Update overwrites cosmetic attributes of an active row in place.
type Update struct {
	SurrogateKey int64
	NaturalKey   int64
	Columns      []string
	Values       []any
}

// Plan is the complete set of row mutations for one dimension and run. A
// Store applies it atomically or not at all.
type Plan struct {
	Mode   Mode
	Expire []Expiry
	Update []Update
	Insert []Version

	// ExpectedMaxKey and ExpectedRows describe the snapshot the plan was
	// built from. Append-mode stores refuse the plan if the table moved.
	ExpectedMaxKey int64
	ExpectedRows   int64
}

// Empty reports whether the plan carries no mutation.
func (p *Plan) Empty() bool {
	return len(p.Expire) == 0 && len(p.Update) == 0 && len(p.Insert) == 0
}

// PlanFirstLoad builds the replace-mode plan for a dimension with no
// persisted table: the sentinel rows followed by every staged record,
// numbered from 1 and valid from the epoch.
func PlanFirstLoad(shape *Shape, staged []Record, p Placeholders, epoch time.Time) (*Plan, KeyBlock, error) {
	block, err := Allocate(nil, len(staged), NumberingMaxKey)
	if err != nil {
		return nil, KeyBlock{}, err
	}
	plan := &Plan{Mode: ModeReplace}
	plan.Insert = append(plan.Insert, Sentinels(shape, p, epoch)...)
	for i, r := range staged {
		plan.Insert = append(plan.Insert, Version{
			SurrogateKey: block.Key(i),
			NaturalKey:   r.NaturalKey,
			Values:       r.Values,
			ValidFrom:    epoch,
			Active:       true,
		})
	}
	return plan, block, nil
}

// PlanChanges builds the append-mode plan for a classification. Keys are
// taken from block in order: inserts first, then new versions. Attribute
// changes expire the current row at now and open a new one valid from now.
// Display-only changes overwrite the differing columns on the active row.
func PlanChanges(shape *Shape, snap *Snapshot, c *Classification, block KeyBlock, now time.Time) (*Plan, error) {
	if block.Count != c.NewKeys() {
		return nil, fmt.Errorf("dimension %s: key block holds %d keys, %d required", shape.Name, block.Count, c.NewKeys())
	}
	if !shape.Versioned && len(c.AttributeChanges) > 0 {
		return nil, fmt.Errorf("dimension %s: attribute changes on an unversioned dimension", shape.Name)
	}

	plan := &Plan{
		Mode:           ModeAppend,
		ExpectedMaxKey: snap.MaxKey,
		ExpectedRows:   snap.RowCount,
	}

	next := 0
	for _, r := range c.Inserts {
		plan.Insert = append(plan.Insert, Version{
			SurrogateKey: block.Key(next),
			NaturalKey:   r.NaturalKey,
			Values:       r.Values,
			ValidFrom:    now,
			Active:       true,
		})
		next++
	}

	for _, ch := range c.AttributeChanges {
		plan.Expire = append(plan.Expire, Expiry{
			SurrogateKey: ch.Current.SurrogateKey,
			NaturalKey:   ch.Current.NaturalKey,
			ValidTo:      now,
		})
		plan.Insert = append(plan.Insert, Version{
			SurrogateKey: block.Key(next),
			NaturalKey:   ch.Staged.NaturalKey,
			Values:       ch.Staged.Values,
			ValidFrom:    now,
			Active:       true,
		})
		next++
	}

	for _, ch := range c.DisplayOnlyChanges {
		u := Update{
			SurrogateKey: ch.Current.SurrogateKey,
			NaturalKey:   ch.Current.NaturalKey,
		}
		for _, name := range ch.Columns {
			u.Columns = append(u.Columns, name)
			u.Values = append(u.Values, ch.Staged.Values[shape.ColumnIndex(name)])
		}
		plan.Update = append(plan.Update, u)
	}
	return plan, nil
}
