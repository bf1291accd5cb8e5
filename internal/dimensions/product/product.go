//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package product implements the d_produto dimension.
package product

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/category"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

const (
	// Name is the registered dimension name.
	Name = "produto"

	// StagingTable holds the operational product catalogue.
	StagingTable = "stg_produto"
)

// Product is the product dimension. Prices are versioned so historical
// sales keep the price in effect when they happened.
type Product struct{}

func init() {
	dimensions.Register(&Product{})
}

// Name returns the dimension name.
func (p *Product) Name() string {
	return Name
}

// Description returns a human-readable description.
func (p *Product) Description() string {
	return "Product catalogue, versioned on barcode, cost, margin and category"
}

// Shape returns the d_produto descriptor.
func (p *Product) Shape() *scd.Shape {
	return Shape()
}

// Shape returns the d_produto descriptor.
func Shape() *scd.Shape {
	return &scd.Shape{
		Name:         Name,
		Table:        "d_produto",
		SurrogateKey: "sk_produto",
		NaturalKey:   "cd_produto",
		Versioned:    true,
		Columns: []scd.Column{
			{Name: "no_produto", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "cd_barra", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "vl_preco_custo", Kind: scd.KindNumeric, Policy: scd.Tracked},
			{Name: "vl_percentual_lucro", Kind: scd.KindNumeric, Policy: scd.Tracked},
			{Name: "dt_cadastro", Kind: scd.KindDate, Policy: scd.Tracked},
			{Name: "fl_ativo_origem", Kind: scd.KindBoolean, Policy: scd.Cosmetic},
			{Name: "cd_categoria", Kind: scd.KindInteger, Policy: scd.Tracked},
			{Name: "ds_categoria", Kind: scd.KindText, Policy: scd.Tracked},
		},
	}
}

// Extract reads stg_produto and derives each product's category from its
// name.
func (p *Product) Extract(ctx context.Context, src dimensions.Source) ([]scd.Record, error) {
	rows, err := src.Reader.Read(ctx, StagingTable, staging.ReadOptions{
		Columns: []string{"id_produto", "nome_produto", "cod_barra", "preco_custo",
			"percentual_lucro", "data_cadastro", "ativo"},
		OrderBy:  []string{"id_produto"},
		Observed: true,
	})
	if err != nil {
		return nil, err
	}

	records := make([]scd.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		rec, err := productRecord(rows, i, src.Placeholders)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func productRecord(rows *staging.Rows, i int, p scd.Placeholders) (scd.Record, error) {
	id, err := rows.Int64(i, "id_produto")
	if err != nil {
		return scd.Record{}, err
	}
	name, err := rows.String(i, "nome_produto")
	if err != nil {
		return scd.Record{}, err
	}
	barcode, err := rows.String(i, "cod_barra")
	if err != nil {
		return scd.Record{}, err
	}
	cost, err := rows.Decimal(i, "preco_custo")
	if err != nil {
		return scd.Record{}, err
	}
	margin, err := rows.Decimal(i, "percentual_lucro")
	if err != nil {
		return scd.Record{}, err
	}
	registered, err := rows.Time(i, "data_cadastro")
	if err != nil {
		return scd.Record{}, err
	}
	raw, err := rows.Value(i, "ativo")
	if err != nil {
		return scd.Record{}, err
	}
	active, err := scd.KindBoolean.Normalize(raw)
	if err != nil {
		return scd.Record{}, fmt.Errorf("row %d column ativo: %w", i, err)
	}

	name = dimensions.CleanText(name)
	catKey := scd.KeyUnknown
	catName := p.Label(scd.KeyUnknown)
	if cat, ok := category.ForProduct(name); ok {
		catKey = category.Key(cat)
		catName = cat
	}

	return scd.Record{
		NaturalKey: id,
		Values: []any{
			name,
			dimensions.Digits(barcode),
			cost.Round(2),
			margin.Round(2),
			scd.DateOf(registered),
			active,
			catKey,
			catName,
		},
	}, nil
}
