//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store implements the d_loja dimension.
package store

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/address"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

const (
	// Name is the registered dimension name.
	Name = "loja"

	// StagingTable holds the operational stores.
	StagingTable = "stg_loja"

	// AddressColumn holds the natural key of the store's address.
	AddressColumn = "cd_endereco_loja"
)

// Store is the store dimension.
type Store struct{}

func init() {
	dimensions.Register(&Store{})
}

// Name returns the dimension name.
func (s *Store) Name() string {
	return Name
}

// Description returns a human-readable description.
func (s *Store) Description() string {
	return "Stores with their address, versioned on legal name, CNPJ and address"
}

// Shape returns the d_loja descriptor.
func (s *Store) Shape() *scd.Shape {
	return Shape()
}

// Shape returns the d_loja descriptor.
func Shape() *scd.Shape {
	return &scd.Shape{
		Name:         Name,
		Table:        "d_loja",
		SurrogateKey: "sk_loja",
		NaturalKey:   "cd_loja",
		Versioned:    true,
		Columns: []scd.Column{
			{Name: "no_loja", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "ds_razao_social", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "nu_cnpj", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "nu_telefone", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: AddressColumn, Kind: scd.KindInteger, Policy: scd.Tracked},
			{Name: "no_estado", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "no_cidade", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "no_bairro", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "ds_rua", Kind: scd.KindText, Policy: scd.Tracked},
		},
	}
}

// Extract reads stg_loja and denormalizes each store's address.
func (s *Store) Extract(ctx context.Context, src dimensions.Source) ([]scd.Record, error) {
	addrs, err := address.Load(ctx, src.Reader)
	if err != nil {
		return nil, err
	}

	rows, err := src.Reader.Read(ctx, StagingTable, staging.ReadOptions{
		Columns:  []string{"id_loja", "nome_loja", "razao_social", "cnpj", "telefone", "id_endereco"},
		OrderBy:  []string{"id_loja"},
		Observed: true,
	})
	if err != nil {
		return nil, err
	}

	records := make([]scd.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		id, err := rows.Int64(i, "id_loja")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		text := make(map[string]string, 4)
		for _, col := range []string{"nome_loja", "razao_social", "cnpj", "telefone"} {
			v, err := rows.String(i, col)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", StagingTable, err)
			}
			text[col] = v
		}
		addrID, hasAddr, err := rows.NullInt64(i, "id_endereco")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}

		key, at := addrs.Resolve(addrID, hasAddr, src.Placeholders)
		records = append(records, scd.Record{
			NaturalKey: id,
			Values: []any{
				dimensions.CleanText(text["nome_loja"]),
				dimensions.CleanText(text["razao_social"]),
				dimensions.Digits(text["cnpj"]),
				dimensions.Digits(text["telefone"]),
				key,
				at.Estado,
				at.Cidade,
				at.Bairro,
				at.Rua,
			},
		})
	}
	return records, nil
}
