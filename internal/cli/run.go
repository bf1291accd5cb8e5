//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retail-dw/internal/db"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/fact"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
	"github.com/pgEdge/pgedge-retail-dw/internal/pipeline"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
	"github.com/pgEdge/pgedge-retail-dw/internal/warehouse"
)

var (
	runDimensions   []string
	runParallelism  int
	runKeyNumbering string
	runSkipFact     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile dimensions and rebuild the sales fact",
	Long: `Reconcile every dimension (or the ones named with --dimension)
against the staging schema, record each outcome in the run log, and then
rebuild f_venda. The fact is skipped when any dimension fails.

Interrupting with Ctrl+C cancels the run; dimensions not yet committed
are left unchanged.

Example:
  pgedge-retail-dw run --connection "postgres://..."
  pgedge-retail-dw run --dimension cliente --dimension endereco --skip-fact
  pgedge-retail-dw run --parallelism 1 --key-numbering row_count`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringSliceVar(&runDimensions, "dimension", nil,
		"dimension to reconcile (repeatable; default: all)")
	runCmd.Flags().IntVar(&runParallelism, "parallelism", 0,
		"number of dimensions reconciled at once")
	runCmd.Flags().StringVar(&runKeyNumbering, "key-numbering", "",
		"surrogate key numbering: max or row_count")
	runCmd.Flags().BoolVar(&runSkipFact, "skip-fact", false,
		"do not rebuild the sales fact")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if len(runDimensions) > 0 {
		cfg.Reconcile.Dimensions = runDimensions
	}
	if runParallelism > 0 {
		cfg.Reconcile.Parallelism = runParallelism
	}
	if runKeyNumbering != "" {
		cfg.Reconcile.KeyNumbering = runKeyNumbering
	}

	// Validate configuration
	if err := cfg.ValidateRun(); err != nil {
		return err
	}
	numbering, err := scd.ParseNumbering(cfg.Reconcile.KeyNumbering)
	if err != nil {
		return err
	}
	epoch, err := cfg.EpochTime()
	if err != nil {
		return err
	}
	dims, err := dimensions.Select(cfg.Reconcile.Dimensions)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Each dimension holds one connection for its transaction; the run log
	// and the fact need one more.
	pool, err := connect(ctx, cfg.Reconcile.Parallelism+1)
	if err != nil {
		return err
	}
	defer pool.Close()

	runs := db.NewRunLog(pool, cfg.WarehouseSchema)
	if err := runs.Ensure(ctx); err != nil {
		return err
	}

	store := warehouse.NewPostgres(pool)
	reader := staging.NewReader(pool, cfg.StagingSchema)
	reconciler := scd.NewReconciler(store, scd.Options{
		Placeholders: cfg.ScdPlaceholders(),
		Epoch:        epoch,
		Numbering:    numbering,
	})

	var facts pipeline.FactBuilder
	if !runSkipFact {
		facts = fact.NewAssembler(reader, store, store, cfg.WarehouseSchema)
	}

	logging.Info().
		Str("staging", cfg.StagingSchema).
		Str("warehouse", cfg.WarehouseSchema).
		Strs("dimensions", names(dims)).
		Str("key_numbering", string(numbering)).
		Msg("Starting reconciliation")

	runner := pipeline.NewRunner(reader, reconciler, runs, facts, pipeline.Options{
		Schema:      cfg.WarehouseSchema,
		Parallelism: cfg.Reconcile.Parallelism,
	})
	report, err := runner.Run(ctx, dims)
	if report != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Info().Msg("Run cancelled")
		}
		return err
	}
	return nil
}

func names(dims []dimensions.Dimension) []string {
	out := make([]string, len(dims))
	for i, d := range dims {
		out[i] = d.Name()
	}
	return out
}

// printReport writes a per-dimension summary of a run.
func printReport(w io.Writer, r *pipeline.Report) {
	fmt.Fprintf(w, "\nRun %s (%s)\n\n", r.RunID, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  %-16s %-8s %8s %9s %8s %9s %10s  %s\n",
		"DIMENSION", "MODE", "INSERTED", "VERSIONED", "UPDATED", "UNCHANGED", "DUPLICATES", "STATUS")
	for _, o := range r.Outcomes {
		if o.Dimension == "" {
			continue
		}
		status := "ok"
		if o.Err != nil {
			status = "failed: " + o.Err.Error()
		}
		res := o.Result
		if res == nil {
			fmt.Fprintf(w, "  %-16s %-8s %8s %9s %8s %9s %10s  %s\n", o.Dimension, "-", "-", "-", "-", "-", "-", status)
			continue
		}
		mode := string(res.Mode)
		if mode == "" {
			mode = "none"
		}
		fmt.Fprintf(w, "  %-16s %-8s %8d %9d %8d %9d %10d  %s\n",
			o.Dimension, mode, res.Inserted, res.Versioned, res.Updated, res.Unchanged, res.Duplicates, status)
	}
	if f := r.Fact; f != nil {
		fmt.Fprintf(w, "\n  %s: %d rows from %d sales", fact.Table, f.Rows, f.Sales)
		if f.Orphans > 0 {
			fmt.Fprintf(w, ", %d orphan lines skipped", f.Orphans)
		}
		fmt.Fprintln(w)
		for dim, n := range f.Unknown {
			fmt.Fprintf(w, "    %d unresolved %s keys\n", n, dim)
		}
	}
	fmt.Fprintln(w)
}
