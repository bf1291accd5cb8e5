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

// Change pairs a staged record with the active row it differs from.
type Change struct {
	Current Version
	Staged  Record
	// Columns names the attributes whose values differ.
	Columns []string
}

// Classification partitions a staged batch against the active rows. Every
// staged natural key lands in exactly one bucket.
type Classification struct {
	Inserts            []Record
	AttributeChanges   []Change
	DisplayOnlyChanges []Change
	Unchanged          []Record
}

// NewKeys returns how many surrogate keys the classification consumes.
func (c *Classification) NewKeys() int {
	return len(c.Inserts) + len(c.AttributeChanges)
}

// Dedupe collapses records sharing a natural key. The last record observed
// wins and takes the position of the first occurrence, so the output order
// is stable for a given input.
func Dedupe(records []Record) (unique []Record, duplicates int) {
	pos := make(map[int64]int, len(records))
	unique = make([]Record, 0, len(records))
	for _, r := range records {
		if i, ok := pos[r.NaturalKey]; ok {
			unique[i] = r
			duplicates++
			continue
		}
		pos[r.NaturalKey] = len(unique)
		unique = append(unique, r)
	}
	return unique, duplicates
}

// Classify sorts deduplicated staged records into insert, attribute-changed,
// display-only and unchanged buckets. A tracked difference takes precedence
// over cosmetic differences on the same record.
func Classify(shape *Shape, staged []Record, active []Version) (*Classification, error) {
	current := make(map[int64]Version, len(active))
	for _, v := range active {
		if v.IsSentinel() {
			continue
		}
		if _, dup := current[v.NaturalKey]; dup {
			return nil, fmt.Errorf("dimension %s: natural key %d: %w", shape.Name, v.NaturalKey, ErrMultipleActive)
		}
		if len(v.Values) != len(shape.Columns) {
			return nil, fmt.Errorf("dimension %s: version %d has %d values, expected %d",
				shape.Name, v.SurrogateKey, len(v.Values), len(shape.Columns))
		}
		current[v.NaturalKey] = v
	}

	c := &Classification{}
	for _, r := range staged {
		row, ok := current[r.NaturalKey]
		if !ok {
			c.Inserts = append(c.Inserts, r)
			continue
		}
		tracked, cosmetic := shape.diff(row.Values, r.Values)
		switch {
		case len(tracked) > 0:
			c.AttributeChanges = append(c.AttributeChanges, Change{
				Current: row,
				Staged:  r,
				Columns: append(tracked, cosmetic...),
			})
		case len(cosmetic) > 0:
			c.DisplayOnlyChanges = append(c.DisplayOnlyChanges, Change{
				Current: row,
				Staged:  r,
				Columns: cosmetic,
			})
		default:
			c.Unchanged = append(c.Unchanged, r)
		}
	}
	return c, nil
}
