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
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retail-dw/internal/db"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/warehouse"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts and the last run of every dimension",
	RunE:  runStatus,
}

var lookupAt string

var lookupCmd = &cobra.Command{
	Use:   "lookup <dimension> <natural-key>",
	Short: "Resolve a natural key to the version valid at a point in time",
	Long: `Resolve a natural key to the dimension row that was valid at the
given time (default: now) and print its attributes, together with the
full version history of the key.

Example:
  pgedge-retail-dw lookup cliente 100
  pgedge-retail-dw lookup cliente 100 --at 2024-03-01T12:00:00Z`,
	Args: cobra.ExactArgs(2),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupAt, "at", "",
		"point in time, RFC 3339 or YYYY-MM-DD (default: now)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx, 1)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := warehouse.NewPostgres(pool)
	runs := db.NewRunLog(pool, cfg.WarehouseSchema)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  %-16s %-22s %8s %8s %8s  %s\n", "DIMENSION", "TABLE", "ROWS", "ACTIVE", "MAX KEY", "LAST RUN")
	for _, d := range dimensions.All() {
		st, err := store.Stats(ctx, d.Shape().WithSchema(cfg.WarehouseSchema))
		if err != nil {
			return err
		}
		last, err := runs.Last(ctx, d.Name())
		if err != nil && !errors.Is(err, db.ErrNoRuns) {
			return err
		}
		printStatus(w, st, last)
	}
	return nil
}

func printStatus(w io.Writer, st *warehouse.Stats, last *db.RunEntry) {
	lastRun := "never"
	if last != nil {
		lastRun = fmt.Sprintf("%s %s (%s)", last.FinishedAt.Local().Format(time.DateTime), last.Status, last.Mode)
	}
	if !st.Exists {
		fmt.Fprintf(w, "  %-16s %-22s %8s %8s %8s  %s\n", st.Dimension, st.Table, "-", "-", "-", lastRun)
		return
	}
	fmt.Fprintf(w, "  %-16s %-22s %8d %8d %8d  %s\n", st.Dimension, st.Table, st.Rows, st.Active, st.MaxKey, lastRun)
}

func runLookup(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d, err := dimensions.Get(args[0])
	if err != nil {
		return err
	}
	nk, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid natural key %q: %w", args[1], err)
	}
	at, err := parseInstant(lookupAt, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx, 1)
	if err != nil {
		return err
	}
	defer pool.Close()

	shape := d.Shape().WithSchema(cfg.WarehouseSchema)
	versions, err := warehouse.NewPostgres(pool).Versions(ctx, shape)
	if err != nil {
		return err
	}
	printLookup(cmd.OutOrStdout(), scd.NewTimeline(shape, versions), nk, at)
	return nil
}

// parseInstant accepts RFC 3339 timestamps and plain dates, which are read
// as midnight UTC. An empty string yields now.
func parseInstant(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected RFC 3339 or YYYY-MM-DD)", s)
}

func printLookup(w io.Writer, tl *scd.Timeline, nk int64, at time.Time) {
	shape := tl.Shape()
	v, ok := tl.Resolve(nk, at)
	if !ok {
		fmt.Fprintf(w, "%s %d has no version valid at %s; facts use %s = %d\n",
			shape.NaturalKey, nk, at.Format(time.RFC3339), shape.SurrogateKey, scd.KeyUnknown)
	} else {
		fmt.Fprintf(w, "%s = %d at %s\n\n", shape.SurrogateKey, v.SurrogateKey, at.Format(time.RFC3339))
		for i, c := range shape.Columns {
			fmt.Fprintf(w, "  %-24s %v\n", c.Name, v.Values[i])
		}
	}

	history := tl.History(nk)
	if len(history) == 0 || !shape.Versioned {
		return
	}
	fmt.Fprintf(w, "\nHistory of %s %d:\n", shape.NaturalKey, nk)
	for _, h := range history {
		to := "open"
		if h.ValidTo != nil {
			to = h.ValidTo.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "  %s %-6d %s .. %s\n", shape.SurrogateKey, h.SurrogateKey, h.ValidFrom.Format(time.RFC3339), to)
	}
}
