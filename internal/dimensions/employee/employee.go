//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package employee implements the d_funcionario dimension.
package employee

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

const (
	// Name is the registered dimension name.
	Name = "funcionario"

	// StagingTable holds the operational employees.
	StagingTable = "stg_funcionario"
)

// Employee is the sales staff dimension.
type Employee struct{}

func init() {
	dimensions.Register(&Employee{})
}

// Name returns the dimension name.
func (e *Employee) Name() string {
	return Name
}

// Description returns a human-readable description.
func (e *Employee) Description() string {
	return "Sales staff, versioned on tax id and birth date"
}

// Shape returns the d_funcionario descriptor.
func (e *Employee) Shape() *scd.Shape {
	return Shape()
}

// Shape returns the d_funcionario descriptor.
func Shape() *scd.Shape {
	return &scd.Shape{
		Name:         Name,
		Table:        "d_funcionario",
		SurrogateKey: "sk_funcionario",
		NaturalKey:   "cd_funcionario",
		Versioned:    true,
		Columns: []scd.Column{
			{Name: "no_funcionario", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "nu_cpf", Kind: scd.KindText, Policy: scd.Tracked},
			{Name: "nu_telefone", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "dt_nascimento", Kind: scd.KindDate, Policy: scd.Tracked},
		},
	}
}

// Extract reads stg_funcionario.
func (e *Employee) Extract(ctx context.Context, src dimensions.Source) ([]scd.Record, error) {
	rows, err := src.Reader.Read(ctx, StagingTable, staging.ReadOptions{
		Columns:  []string{"id_funcionario", "nome", "cpf", "tel", "data_nascimento"},
		OrderBy:  []string{"id_funcionario"},
		Observed: true,
	})
	if err != nil {
		return nil, err
	}

	records := make([]scd.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		id, err := rows.Int64(i, "id_funcionario")
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
		born, err := rows.Time(i, "data_nascimento")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}

		records = append(records, scd.Record{
			NaturalKey: id,
			Values: []any{
				dimensions.CleanText(name),
				dimensions.Digits(cpf),
				dimensions.Digits(tel),
				scd.DateOf(born),
			},
		})
	}
	return records, nil
}
