//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline drives one warehouse run: every selected dimension is
// extracted and reconciled, the outcome recorded in the run log, and the
// sales fact rebuilt once all dimensions succeed.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-retail-dw/internal/db"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/fact"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

// RunRecorder persists run log entries.
type RunRecorder interface {
	Save(ctx context.Context, e db.RunEntry) error
}

// FactBuilder rebuilds the sales fact.
type FactBuilder interface {
	Assemble(ctx context.Context) (*fact.Result, error)
}

// Options configures a Runner.
type Options struct {
	// Schema is the warehouse schema dimensions are written to.
	Schema string

	// Parallelism bounds how many dimensions reconcile at once. Values
	// below one mean one.
	Parallelism int

	Placeholders scd.Placeholders
	Clock        clockwork.Clock
}

// Outcome is the result of one dimension.
type Outcome struct {
	Dimension string
	Result    *scd.Result
	Err       error
	Duration  time.Duration
}

// Report summarizes a run.
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
	Fact       *fact.Result
}

// Runner executes warehouse runs.
type Runner struct {
	reader     dimensions.Reader
	reconciler *scd.Reconciler
	runs       RunRecorder
	facts      FactBuilder
	opts       Options
}

// NewRunner creates a runner. runs and facts may be nil to skip the run log
// and the fact respectively.
func NewRunner(reader dimensions.Reader, reconciler *scd.Reconciler, runs RunRecorder, facts FactBuilder, opts Options) *Runner {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Placeholders == (scd.Placeholders{}) {
		opts.Placeholders = reconciler.Placeholders()
	}
	return &Runner{reader: reader, reconciler: reconciler, runs: runs, facts: facts, opts: opts}
}

// Run reconciles dims concurrently and then assembles the fact. The first
// dimension failure cancels the dimensions still running and is returned
// together with the partial report; the fact is skipped in that case.
func (r *Runner) Run(ctx context.Context, dims []dimensions.Dimension) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		StartedAt: r.opts.Clock.Now().UTC(),
		Outcomes:  make([]Outcome, len(dims)),
	}

	log := logging.Run(report.RunID.String())
	log.Info().
		Int("dimensions", len(dims)).
		Int("parallelism", r.opts.Parallelism).
		Msg("Starting warehouse run")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for i, d := range dims {
		g.Go(func() error {
			out := r.reconcile(gctx, ctx, log, report.RunID, d)
			report.Outcomes[i] = out
			return out.Err
		})
	}
	err := g.Wait()

	if err == nil && r.facts != nil {
		res, ferr := r.facts.Assemble(ctx)
		if ferr != nil {
			err = fmt.Errorf("failed to assemble %s: %w", fact.Table, ferr)
		}
		report.Fact = res
	}

	report.FinishedAt = r.opts.Clock.Now().UTC()
	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Finished warehouse run")

	return report, err
}

// reconcile runs one dimension under gctx and records the outcome with
// logCtx so failures are logged even after the group is cancelled.
func (r *Runner) reconcile(gctx, logCtx context.Context, log zerolog.Logger, runID uuid.UUID, d dimensions.Dimension) Outcome {
	started := r.opts.Clock.Now().UTC()
	out := Outcome{Dimension: d.Name()}
	shape := d.Shape().WithSchema(r.opts.Schema)

	records, err := d.Extract(gctx, dimensions.Source{Reader: r.reader, Placeholders: r.opts.Placeholders})
	if err != nil {
		out.Err = fmt.Errorf("failed to extract %s: %w", d.Name(), err)
	} else {
		out.Result, err = r.reconciler.Reconcile(gctx, shape, records)
		if err != nil {
			out.Err = fmt.Errorf("failed to reconcile %s: %w", d.Name(), err)
		}
	}

	finished := r.opts.Clock.Now().UTC()
	out.Duration = finished.Sub(started)

	if r.runs != nil {
		entry := entryFor(runID, d.Name(), out, started, finished)
		if err := r.runs.Save(logCtx, entry); err != nil {
			log.Warn().Err(err).Str("dimension", d.Name()).Msg("Failed to record run")
		}
	}

	ev := log.Info()
	if out.Err != nil {
		ev = log.Error().Err(out.Err)
	}
	ev = ev.Str("dimension", d.Name())
	if res := out.Result; res != nil {
		ev = ev.Str("mode", string(res.Mode)).
			Int("inserted", res.Inserted).
			Int("versioned", res.Versioned).
			Int("updated", res.Updated).
			Int("unchanged", res.Unchanged).
			Int("duplicates", res.Duplicates)
	}
	ev.Msg("Dimension done")

	return out
}

func entryFor(runID uuid.UUID, name string, out Outcome, started, finished time.Time) db.RunEntry {
	e := db.RunEntry{
		RunID:      runID,
		Dimension:  name,
		Status:     db.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: finished,
	}
	if out.Err != nil {
		e.Status = db.StatusFailed
		e.Error = out.Err.Error()
	}
	res := out.Result
	if res == nil {
		e.Mode = "none"
		return e
	}
	e.Mode = string(res.Mode)
	if e.Mode == "" {
		e.Mode = "none"
	}
	e.Inserted = res.Inserted
	e.Versioned = res.Versioned
	e.Updated = res.Updated
	e.Unchanged = res.Unchanged
	e.Duplicates = res.Duplicates
	if res.Keys.Count > 0 {
		first, last := res.Keys.Start, res.Keys.Last()
		e.FirstKey = &first
		e.LastKey = &last
	}
	return e
}
