//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dimensions_test

import (
	"testing"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	// Import dimension packages to trigger their init() functions which register the dimensions
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/address"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/calendar"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/category"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/customer"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/employee"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/payment"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/product"
	_ "github.com/pgEdge/pgedge-retail-dw/internal/dimensions/store"
)

var knownDimensions = []string{
	"categoria",
	"cliente",
	"data",
	"endereco",
	"forma_pagamento",
	"funcionario",
	"loja",
	"produto",
}

func TestGet(t *testing.T) {
	for _, name := range knownDimensions {
		t.Run(name, func(t *testing.T) {
			d, err := dimensions.Get(name)
			if err != nil {
				t.Fatalf("Failed to get dimension '%s': %v", name, err)
			}
			if d.Name() != name {
				t.Errorf("Dimension name mismatch: expected '%s', got '%s'", name, d.Name())
			}
			if d.Description() == "" {
				t.Error("Dimension description should not be empty")
			}
		})
	}
}

func TestGetInvalidDimension(t *testing.T) {
	if _, err := dimensions.Get("nonexistent"); err == nil {
		t.Error("Expected error for nonexistent dimension, got nil")
	}
	if _, err := dimensions.Get(""); err == nil {
		t.Error("Expected error for empty dimension name, got nil")
	}
}

func TestList(t *testing.T) {
	got := dimensions.List()
	if len(got) != len(knownDimensions) {
		t.Fatalf("List returned %d dimensions, expected %d: %v", len(got), len(knownDimensions), got)
	}
	for i, name := range knownDimensions {
		if got[i] != name {
			t.Errorf("List()[%d] = '%s', expected '%s'", i, got[i], name)
		}
	}
}

func TestShapesValidate(t *testing.T) {
	for _, d := range dimensions.All() {
		t.Run(d.Name(), func(t *testing.T) {
			shape := d.Shape()
			if err := shape.Validate(); err != nil {
				t.Fatalf("Shape of %s is invalid: %v", d.Name(), err)
			}
			if shape.Schema != "" {
				t.Errorf("Shape of %s should carry no schema, got '%s'", d.Name(), shape.Schema)
			}
			if shape.Name != d.Name() {
				t.Errorf("Shape name '%s' does not match dimension '%s'", shape.Name, d.Name())
			}
		})
	}
}

func TestSelect(t *testing.T) {
	all, err := dimensions.Select(nil)
	if err != nil {
		t.Fatalf("Select(nil) failed: %v", err)
	}
	if len(all) != len(knownDimensions) {
		t.Errorf("Select(nil) returned %d dimensions, expected %d", len(all), len(knownDimensions))
	}

	some, err := dimensions.Select([]string{"produto", "cliente", "produto"})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(some) != 2 || some[0].Name() != "produto" || some[1].Name() != "cliente" {
		t.Errorf("Select returned unexpected dimensions: %v", some)
	}

	if _, err := dimensions.Select([]string{"cliente", "bogus"}); err == nil {
		t.Error("Expected error for unknown dimension in selection")
	}
}

func BenchmarkGet(b *testing.B) {
	for i := 0; i < b.N; i++ {
		dimensions.Get("cliente")
	}
}
