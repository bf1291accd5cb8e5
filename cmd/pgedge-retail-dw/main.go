//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package main is the entry point for pgedge-retail-dw.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-retail-dw/internal/cli"

	// Register dimensions
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/address"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/calendar"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/category"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/customer"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/employee"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/payment"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/product"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/store"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
