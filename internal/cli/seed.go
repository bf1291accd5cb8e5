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
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retail-dw/internal/datagen"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
	"github.com/pgEdge/pgedge-retail-dw/internal/warehouse"
)

var (
	seedCustomers int
	seedProducts  int
	seedSales     int
	seedSeed      uint64
	seedMutate    bool
	seedFraction  float64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the staging schema with synthetic data",
	Long: `Create the staging tables and fill them with synthetic retail data:
addresses, customers, stores, employees, products, payment methods and
sales with their line items. Existing staging tables are replaced.

With --mutate the staging data is not replaced; instead a fraction of the
customers move or are renamed and a fraction of the products change cost
price, so the next run has versions to create.

Example:
  pgedge-retail-dw seed --connection "postgres://..." --sales 5000
  pgedge-retail-dw seed --mutate --fraction 0.2`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 0,
		"number of staged customers")
	seedCmd.Flags().IntVar(&seedProducts, "products", 0,
		"number of staged products")
	seedCmd.Flags().IntVar(&seedSales, "sales", 0,
		"number of staged sales")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0,
		"random seed for reproducible data (0 = random)")
	seedCmd.Flags().BoolVar(&seedMutate, "mutate", false,
		"change existing staging data instead of replacing it")
	seedCmd.Flags().Float64Var(&seedFraction, "fraction", 0,
		"share of customers and products changed by --mutate")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedCustomers > 0 {
		cfg.Seed.Customers = seedCustomers
	}
	if seedProducts > 0 {
		cfg.Seed.Products = seedProducts
	}
	if seedSales > 0 {
		cfg.Seed.Sales = seedSales
	}
	if seedSeed > 0 {
		cfg.Seed.Seed = seedSeed
	}
	if seedFraction > 0 {
		cfg.Seed.MutateFraction = seedFraction
	}

	// Validate configuration
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx, 0)
	if err != nil {
		return err
	}
	defer pool.Close()

	gen := datagen.NewGenerator(cfg.Seed.Counts, cfg.Seed.Seed, time.Now())

	if seedMutate {
		m, err := datagen.Mutate(ctx, pool, cfg.StagingSchema, gen.Faker(), cfg.Seed.MutateFraction)
		if err != nil {
			return err
		}
		cmd.Printf("Moved %d customers, renamed %d, repriced %d products\n",
			m.Moves, m.Renames, m.PriceChanges)
		return nil
	}

	logging.Info().
		Str("schema", cfg.StagingSchema).
		Int("customers", cfg.Seed.Customers).
		Int("products", cfg.Seed.Products).
		Int("sales", cfg.Seed.Sales).
		Msg("Seeding staging data")

	counts, err := datagen.NewSeeder(warehouse.NewPostgres(pool), cfg.StagingSchema, gen).Seed(ctx)
	if err != nil {
		return err
	}

	tables := make([]string, 0, len(counts))
	for t := range counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		cmd.Printf("  %-22s %8d rows\n", fmt.Sprintf("%s.%s", cfg.StagingSchema, t), counts[t])
	}

	logging.Info().Msg("Staging data ready")
	return nil
}
