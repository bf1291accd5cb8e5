//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package customer implements the d_cliente dimension.
package customer

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
	Name = "cliente"

	// StagingTable holds the operational customers.
	StagingTable = "stg_cliente"

	// AddressColumn holds the natural key of the customer's address.
	AddressColumn = "cd_endereco_cliente"
)

// Customer is the customer dimension. Registration data and the address
// are versioned; the display name is corrected in place.
type Customer struct{}

func init() {
	dimensions.Register(&Customer{})
}

// Name returns the dimension name.
func (c *Customer) Name() string {
	return Name
}

// Description returns a human-readable description.
func (c *Customer) Description() string {
	return "Customers with their address, versioned on tax id, phone and address"
}

// Shape returns the d_cliente descriptor.
func (c *Customer) Shape() *scd.Shape {
	return Shape()
}

// Shape returns the d_cliente descriptor.
func Shape() *scd.Shape {
	return &scd.Shape{
		Name:         Name,
		Table:        "d_cliente",
		SurrogateKey: "sk_cliente",
		NaturalKey:   "cd_cliente",
		Versioned:    true,
		Columns: []scd.Column{
			{Name: "no_cliente", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "nu_cpf", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "nu_telefone", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: AddressColumn, Kind: scd.KindInteger, Policy: scd.Tracked},
			{Name: "no_estado", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "no_cidade", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "no_bairro", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "ds_rua", Kind: scd.KindText, Policy: scd.Tracked},
		},
	}
}

// Extract reads stg_cliente and denormalizes each customer's address.
func (c *Customer) Extract(ctx context.Context, src dimensions.Source) ([]scd.Record, error) {
	addrs, err := address.Load(ctx, src.Reader)
	if err != nil {
		return nil, err
	}

	rows, err := src.Reader.Read(ctx, StagingTable, staging.ReadOptions{
		Columns:  []string{"id_cliente", "nome", "cpf", "tel", "id_endereco"},
		OrderBy:  []string{"id_cliente"},
		Observed: true,
	})
	if err != nil {
		return nil, err
	}

	records := make([]scd.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		id, err := rows.Int64(i, "id_cliente")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		name, err := rows.String(i, "nome")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		cpf, err := rows.String(i, "cpf")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		tel, err := rows.String(i, "tel")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		addrID, hasAddr, err := rows.NullInt64(i, "id_endereco")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}

		key, at := addrs.Resolve(addrID, hasAddr, src.Placeholders)
		records = append(records, scd.Record{
			NaturalKey: id,
			Values: []any{
				dimensions.CleanText(name),
				dimensions.Digits(cpf),
				dimensions.Digits(tel),
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
