//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-retail-dw.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retail-dw/internal/config"
	"github.com/pgEdge/pgedge-retail-dw/internal/db"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
	"github.com/pgEdge/pgedge-retail-dw/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-retail-dw",
		Short: "Retail data warehouse loader with slowly changing dimensions",
		Long: `pgedge-retail-dw loads a retail star schema in PostgreSQL from
operational snapshots held in a staging schema.

Each run reconciles every dimension against its staging tables using
SCD Type 2 versioning for tracked attributes and in-place updates for
display-only ones, then rebuilds the sales fact with point-in-time
surrogate keys.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-retail-dw.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(dimensionsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

func connect(ctx context.Context, conns int) (*pgxpool.Pool, error) {
	opts := db.DefaultPoolOptions()
	if conns > 0 {
		opts.MaxConns = int32(conns)
	}
	pool, err := db.Connect(ctx, cfg.Connection, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var dimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "List available dimensions",
	Long: `List the dimensions a run reconciles, with their warehouse tables
and whether attribute changes create new versions.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available dimensions:")
		cmd.Println()
		for _, d := range dimensions.All() {
			shape := d.Shape()
			kind := "type 1"
			if shape.Versioned {
				kind = "type 2"
			}
			cmd.Printf("  %-16s %-18s %-7s %s\n", d.Name(), shape.Table, kind, d.Description())
		}
		cmd.Println()
		cmd.Println("Use 'pgedge-retail-dw run --dimension <name>' to reconcile a subset.")
	},
}
