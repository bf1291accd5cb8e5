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
	"sort"
	"time"
)

// Timeline indexes every version of a dimension by natural key for
// point-in-time lookups.
type Timeline struct {
	shape     *Shape
	versions  map[int64][]Version
	sentinels map[int64]Version
}

// NewTimeline builds a timeline from the full history of a dimension.
func NewTimeline(shape *Shape, versions []Version) *Timeline {
	t := &Timeline{
		shape:     shape,
		versions:  make(map[int64][]Version),
		sentinels: make(map[int64]Version),
	}
	for _, v := range versions {
		if v.IsSentinel() {
			t.sentinels[v.SurrogateKey] = v
			continue
		}
		t.versions[v.NaturalKey] = append(t.versions[v.NaturalKey], v)
	}
	for nk := range t.versions {
		vs := t.versions[nk]
		sort.Slice(vs, func(i, j int) bool {
			return vs[i].ValidFrom.Before(vs[j].ValidFrom)
		})
	}
	return t
}

// Shape returns the dimension descriptor of the timeline.
func (t *Timeline) Shape() *Shape {
	return t.shape
}

// Len returns the number of distinct natural keys.
func (t *Timeline) Len() int {
	return len(t.versions)
}

// Resolve returns the version of nk whose window [valid_from, valid_to)
// contains at. Unversioned dimensions ignore at. Non-positive natural keys
// resolve to the sentinel row with the same key.
func (t *Timeline) Resolve(nk int64, at time.Time) (Version, bool) {
	if nk <= 0 {
		v, ok := t.sentinels[nk]
		return v, ok
	}
	vs := t.versions[nk]
	if len(vs) == 0 {
		return Version{}, false
	}
	if !t.shape.Versioned {
		return vs[len(vs)-1], true
	}
	i := sort.Search(len(vs), func(i int) bool {
		return vs[i].ValidFrom.After(at)
	})
	if i == 0 {
		return Version{}, false
	}
	v := vs[i-1]
	if !v.Covers(at) {
		return Version{}, false
	}
	return v, true
}

// Key resolves nk at the given instant to a surrogate key, falling back to
// KeyUnknown when no version covers it.
func (t *Timeline) Key(nk int64, at time.Time) int64 {
	v, ok := t.Resolve(nk, at)
	if !ok {
		return KeyUnknown
	}
	return v.SurrogateKey
}

// Link returns the version a fact recorded at the given instant attaches
// to. It matches Resolve, except that an instant before the first version
// of nk links to that first version: a key inserted by an incremental run
// opens at the run time, after the staged facts that reference it.
func (t *Timeline) Link(nk int64, at time.Time) (Version, bool) {
	if v, ok := t.Resolve(nk, at); ok {
		return v, true
	}
	vs := t.versions[nk]
	if len(vs) == 0 || !at.Before(vs[0].ValidFrom) {
		return Version{}, false
	}
	return vs[0], true
}

// LinkKey is Link reduced to a surrogate key, falling back to KeyUnknown
// when nk is absent from the dimension.
func (t *Timeline) LinkKey(nk int64, at time.Time) int64 {
	v, ok := t.Link(nk, at)
	if !ok {
		return KeyUnknown
	}
	return v.SurrogateKey
}

// History returns every version of nk in valid_from order.
func (t *Timeline) History(nk int64) []Version {
	return append([]Version(nil), t.versions[nk]...)
}
