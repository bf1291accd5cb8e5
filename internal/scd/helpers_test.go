//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package scd_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

// customerShape mirrors d_cliente: the address reference is tracked, the
// customer name is cosmetic.
func customerShape() *scd.Shape {
	return &scd.Shape{
		Name:         "cliente",
		Schema:       "dw",
		Table:        "d_cliente",
		SurrogateKey: "sk_cliente",
		NaturalKey:   "cd_cliente",
		Versioned:    true,
		Columns: []scd.Column{
			{Name: "nm_cliente", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "cpf_cliente", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "cd_endereco_cliente", Kind: scd.KindInteger, Policy: scd.Tracked},
		},
	}
}

// paymentShape is an unversioned dimension.
func paymentShape() *scd.Shape {
	return &scd.Shape{
		Name:         "forma_pagamento",
		Schema:       "dw",
		Table:        "d_forma_pagamento",
		SurrogateKey: "sk_forma_pagamento",
		NaturalKey:   "cd_forma_pagamento",
		Columns: []scd.Column{
			{Name: "ds_forma_pagamento", Kind: scd.KindText, Policy: scd.Cosmetic},
		},
	}
}

func productShape() *scd.Shape {
	return &scd.Shape{
		Name:         "produto",
		Schema:       "dw",
		Table:        "d_produto",
		SurrogateKey: "sk_produto",
		NaturalKey:   "cd_produto",
		Versioned:    true,
		Columns: []scd.Column{
			{Name: "nm_produto", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "vl_preco", Kind: scd.KindNumeric, Policy: scd.Tracked},
			{Name: "dt_cadastro", Kind: scd.KindDate, Policy: scd.Tracked},
		},
	}
}

func customer(nk int64, name, cpf string, address int64) scd.Record {
	return scd.Record{NaturalKey: nk, Values: []any{name, cpf, address}}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var runTime = time.Date(2024, time.March, 10, 14, 30, 0, 0, time.UTC)
