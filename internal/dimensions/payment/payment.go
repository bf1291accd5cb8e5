//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package payment implements the d_forma_pagamento dimension.
package payment

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

const (
	// Name is the registered dimension name.
	Name = "forma_pagamento"

	// StagingTable holds the operational payment methods.
	StagingTable = "stg_forma_pagamento"
)

// Payment is the payment method dimension, overwritten in place.
type Payment struct{}

func init() {
	dimensions.Register(&Payment{})
}

// Name returns the dimension name.
func (p *Payment) Name() string {
	return Name
}

// Description returns a human-readable description.
func (p *Payment) Description() string {
	return "Payment methods (overwritten in place)"
}

// Shape returns the d_forma_pagamento descriptor.
func (p *Payment) Shape() *scd.Shape {
	return Shape()
}

// Shape returns the d_forma_pagamento descriptor.
func Shape() *scd.Shape {
	return &scd.Shape{
		Name:         Name,
		Table:        "d_forma_pagamento",
		SurrogateKey: "sk_forma_pagamento",
		NaturalKey:   "cd_forma_pagamento",
		Columns: []scd.Column{
			{Name: "no_forma_pagamento", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "ds_forma_pagamento", Kind: scd.KindText, Policy: scd.Cosmetic},
		},
	}
}

// Extract reads stg_forma_pagamento.
func (p *Payment) Extract(ctx context.Context, src dimensions.Source) ([]scd.Record, error) {
	rows, err := src.Reader.Read(ctx, StagingTable, staging.ReadOptions{
		Columns:  []string{"id_pagamento", "nome", "descricao"},
		OrderBy:  []string{"id_pagamento"},
		Observed: true,
	})
	if err != nil {
		return nil, err
	}

	records := make([]scd.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		id, err := rows.Int64(i, "id_pagamento")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		name, err := rows.String(i, "nome")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		desc, err := rows.String(i, "descricao")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		records = append(records, scd.Record{
			NaturalKey: id,
			Values:     []any{dimensions.CleanText(name), Describe(desc)},
		})
	}
	return records, nil
}

// Describe normalizes a payment description: Portuguese upper case with
// trailing commas and periods removed.
func Describe(s string) string {
	s = strings.TrimRight(dimensions.CleanText(s), ",.")
	return cases.Upper(language.BrazilianPortuguese).String(strings.TrimSpace(s))
}
