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
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
)

// Store persists dimension tables.
type Store interface {
	// Snapshot returns the active rows and key statistics of a dimension,
	// or ErrDimensionNotFound when its table does not exist.
	Snapshot(ctx context.Context, shape *Shape) (*Snapshot, error)

	// Load applies a plan atomically. Append-mode plans must be refused
	// with a KeyCollisionError if the table no longer matches the
	// snapshot the plan was built from.
	Load(ctx context.Context, shape *Shape, plan *Plan) error
}

// DefaultEpoch is the valid_from of first-load rows and sentinels.
var DefaultEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options configures a Reconciler.
type Options struct {
	Clock        clockwork.Clock
	Placeholders Placeholders
	Epoch        time.Time
	Numbering    Numbering
}

// Result summarizes one reconciliation.
type Result struct {
	Dimension  string
	Mode       Mode
	FirstLoad  bool
	Inserted   int
	Versioned  int
	Updated    int
	Unchanged  int
	Sentinels  int
	Duplicates int
	Rejected   int
	Keys       KeyBlock
	Timestamp  time.Time
}

// Written reports whether the reconciliation wrote anything.
func (r *Result) Written() bool {
	return r.FirstLoad || r.Inserted+r.Versioned+r.Updated > 0
}

// Reconciler folds staged batches into persisted dimensions.
type Reconciler struct {
	store Store
	opts  Options
}

// NewReconciler creates a reconciler writing through store. Zero options
// take their defaults.
func NewReconciler(store Store, opts Options) *Reconciler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Placeholders == (Placeholders{}) {
		opts.Placeholders = DefaultPlaceholders()
	}
	if opts.Epoch.IsZero() {
		opts.Epoch = DefaultEpoch
	}
	if opts.Numbering == "" {
		opts.Numbering = NumberingMaxKey
	}
	return &Reconciler{store: store, opts: opts}
}

// Placeholders returns the sentinel labels in use.
func (r *Reconciler) Placeholders() Placeholders {
	return r.opts.Placeholders
}

// Reconcile brings the dimension described by shape in line with staged.
// Records with a non-positive natural key are rejected. On any error the
// persisted dimension is unchanged.
func (r *Reconciler) Reconcile(ctx context.Context, shape *Shape, staged []Record) (*Result, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Dimension: shape.Name}

	records := make([]Record, 0, len(staged))
	for _, rec := range staged {
		if rec.NaturalKey <= 0 {
			res.Rejected++
			continue
		}
		norm, err := shape.Normalize(rec)
		if err != nil {
			return nil, err
		}
		records = append(records, norm)
	}
	if res.Rejected > 0 {
		logging.Warn().
			Str("dimension", shape.Name).
			Int("rejected", res.Rejected).
			Msg("Skipped staged records with non-positive natural keys")
	}

	records, res.Duplicates = Dedupe(records)
	if res.Duplicates > 0 {
		logging.Warn().
			Str("dimension", shape.Name).
			Int("duplicates", res.Duplicates).
			Msg("Collapsed duplicate natural keys, last record wins")
	}

	snap, err := r.store.Snapshot(ctx, shape)
	if errors.Is(err, ErrDimensionNotFound) {
		return r.firstLoad(ctx, shape, records, res)
	}
	if err != nil {
		return nil, err
	}
	return r.incremental(ctx, shape, snap, records, res)
}

func (r *Reconciler) firstLoad(ctx context.Context, shape *Shape, records []Record, res *Result) (*Result, error) {
	plan, block, err := PlanFirstLoad(shape, records, r.opts.Placeholders, r.opts.Epoch)
	if err != nil {
		return nil, err
	}
	if err := r.store.Load(ctx, shape, plan); err != nil {
		return nil, &LoadError{Dimension: shape.Name, Mode: plan.Mode, Err: err}
	}

	res.Mode = plan.Mode
	res.FirstLoad = true
	res.Inserted = len(records)
	res.Sentinels = len(SentinelKeys)
	res.Keys = block
	res.Timestamp = r.opts.Epoch

	logging.Info().
		Str("dimension", shape.Name).
		Str("table", shape.QualifiedName()).
		Int("rows", res.Inserted).
		Msg("Created dimension")
	return res, nil
}

func (r *Reconciler) incremental(ctx context.Context, shape *Shape, snap *Snapshot, records []Record, res *Result) (*Result, error) {
	c, err := Classify(shape, records, snap.Active)
	if err != nil {
		return nil, err
	}

	res.Unchanged = len(c.Unchanged)

	block, err := Allocate(snap, c.NewKeys(), r.opts.Numbering)
	if err != nil {
		return nil, err
	}
	now := r.opts.Clock.Now().UTC()
	plan, err := PlanChanges(shape, snap, c, block, now)
	if err != nil {
		return nil, err
	}

	if plan.Empty() {
		logging.Debug().
			Str("dimension", shape.Name).
			Int("unchanged", res.Unchanged).
			Msg("Dimension up to date")
		return res, nil
	}

	if err := r.store.Load(ctx, shape, plan); err != nil {
		return nil, &LoadError{Dimension: shape.Name, Mode: plan.Mode, Err: err}
	}

	res.Mode = plan.Mode
	res.Inserted = len(c.Inserts)
	res.Versioned = len(c.AttributeChanges)
	res.Updated = len(c.DisplayOnlyChanges)
	res.Keys = block
	res.Timestamp = now

	logging.Info().
		Str("dimension", shape.Name).
		Int("inserted", res.Inserted).
		Int("versioned", res.Versioned).
		Int("updated", res.Updated).
		Int("unchanged", res.Unchanged).
		Int64("first_key", block.Start).
		Msg("Reconciled dimension")
	return res, nil
}
