//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-retail-dw.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-retail-dw/internal/datagen"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

// EpochLayout is the date layout of reconcile.epoch.
const EpochLayout = "2006-01-02"

// Config holds all configuration for pgedge-retail-dw.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// StagingSchema holds the operational snapshot tables.
	StagingSchema string `mapstructure:"staging_schema"`

	// WarehouseSchema holds the dimensions, the sales fact and the run log.
	WarehouseSchema string `mapstructure:"warehouse_schema"`

	// Reconcile holds configuration for the run subcommand.
	Reconcile ReconcileConfig `mapstructure:"reconcile"`

	// Placeholders label the sentinel rows.
	Placeholders PlaceholderConfig `mapstructure:"placeholders"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// ReconcileConfig holds configuration for dimension reconciliation.
type ReconcileConfig struct {
	// Parallelism is the number of dimensions reconciled at once.
	Parallelism int `mapstructure:"parallelism"`

	// KeyNumbering is "max" or "row_count".
	KeyNumbering string `mapstructure:"key_numbering"`

	// Epoch is the valid-from date of first-load rows (YYYY-MM-DD).
	Epoch string `mapstructure:"epoch"`

	// Dimensions limits a run to the named dimensions (empty = all).
	Dimensions []string `mapstructure:"dimensions"`
}

// PlaceholderConfig holds the sentinel labels.
type PlaceholderConfig struct {
	NotInformed   string `mapstructure:"not_informed"`
	NotApplicable string `mapstructure:"not_applicable"`
	Unknown       string `mapstructure:"unknown"`
}

// SeedConfig holds configuration for synthetic staging data.
type SeedConfig struct {
	datagen.Counts `mapstructure:",squash"`

	// Seed makes generation reproducible (0 = random).
	Seed uint64 `mapstructure:"seed"`

	// MutateFraction is the share of rows changed by seed --mutate.
	MutateFraction float64 `mapstructure:"mutate_fraction"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	p := scd.DefaultPlaceholders()
	return &Config{
		LogLevel:        "info",
		StagingSchema:   "stage",
		WarehouseSchema: "dw",
		Reconcile: ReconcileConfig{
			Parallelism:  4,
			KeyNumbering: string(scd.NumberingMaxKey),
			Epoch:        scd.DefaultEpoch.Format(EpochLayout),
		},
		Placeholders: PlaceholderConfig{
			NotInformed:   p.NotInformed,
			NotApplicable: p.NotApplicable,
			Unknown:       p.Unknown,
		},
		Seed: SeedConfig{
			Counts:         datagen.DefaultCounts(),
			MutateFraction: 0.1,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-retail-dw.yaml
// 3. ~/.config/pgedge-retail-dw/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-retail-dw")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-retail-dw"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.StagingSchema == "" {
		return fmt.Errorf("staging_schema is required")
	}
	if c.WarehouseSchema == "" {
		return fmt.Errorf("warehouse_schema is required")
	}
	return nil
}

// ValidateRun checks configuration required for the run command.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.StagingSchema == c.WarehouseSchema {
		return fmt.Errorf("staging_schema and warehouse_schema must differ")
	}
	if c.Reconcile.Parallelism < 1 {
		return fmt.Errorf("reconcile.parallelism must be at least 1")
	}
	if _, err := scd.ParseNumbering(c.Reconcile.KeyNumbering); err != nil {
		return fmt.Errorf("reconcile.key_numbering: %w", err)
	}
	if _, err := c.EpochTime(); err != nil {
		return err
	}
	p := c.Placeholders
	if p.NotInformed == "" || p.NotApplicable == "" || p.Unknown == "" {
		return fmt.Errorf("placeholder labels must not be empty")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command.
func (c *Config) ValidateSeed() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Seed.Counts.Validate(); err != nil {
		return err
	}
	if c.Seed.MutateFraction <= 0 || c.Seed.MutateFraction > 1 {
		return fmt.Errorf("seed.mutate_fraction must be in (0, 1]")
	}
	return nil
}

// EpochTime parses reconcile.epoch as a UTC date.
func (c *Config) EpochTime() (time.Time, error) {
	t, err := time.ParseInLocation(EpochLayout, c.Reconcile.Epoch, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("reconcile.epoch must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// ScdPlaceholders returns the sentinel labels in engine form.
func (c *Config) ScdPlaceholders() scd.Placeholders {
	return scd.Placeholders{
		NotInformed:   c.Placeholders.NotInformed,
		NotApplicable: c.Placeholders.NotApplicable,
		Unknown:       c.Placeholders.Unknown,
	}
}
