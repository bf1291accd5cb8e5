//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package address implements the d_endereco dimension.
package address

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

const (
	// Name is the registered dimension name.
	Name = "endereco"

	// StagingTable holds the operational addresses.
	StagingTable = "stg_endereco"
)

// Address is the address dimension. Addresses are corrected in place.
type Address struct{}

func init() {
	dimensions.Register(&Address{})
}

// Name returns the dimension name.
func (a *Address) Name() string {
	return Name
}

// Description returns a human-readable description.
func (a *Address) Description() string {
	return "Addresses referenced by customers and stores (overwritten in place)"
}

// Shape returns the d_endereco descriptor.
func (a *Address) Shape() *scd.Shape {
	return Shape()
}

// Shape returns the d_endereco descriptor.
func Shape() *scd.Shape {
	return &scd.Shape{
		Name:         Name,
		Table:        "d_endereco",
		SurrogateKey: "sk_endereco",
		NaturalKey:   "cd_endereco",
		Columns: []scd.Column{
			{Name: "no_estado", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "no_cidade", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "no_bairro", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "ds_rua", Kind: scd.KindText, Policy: scd.Cosmetic},
		},
	}
}

// Extract reads stg_endereco.
func (a *Address) Extract(ctx context.Context, src dimensions.Source) ([]scd.Record, error) {
	addrs, err := Load(ctx, src.Reader)
	if err != nil {
		return nil, err
	}
	records := make([]scd.Record, 0, len(addrs.order))
	for _, id := range addrs.order {
		at := addrs.byID[id]
		records = append(records, scd.Record{
			NaturalKey: id,
			Values:     at.Values(),
		})
	}
	return records, nil
}

// Attributes are the descriptive fields of one address.
type Attributes struct {
	Estado string
	Cidade string
	Bairro string
	Rua    string
}

// Values returns the attributes in d_endereco column order.
func (at Attributes) Values() []any {
	return []any{at.Estado, at.Cidade, at.Bairro, at.Rua}
}

// Placeholder returns address attributes labelled for a sentinel key.
func Placeholder(p scd.Placeholders, key int64) Attributes {
	label := p.Label(key)
	return Attributes{Estado: label, Cidade: label, Bairro: label, Rua: label}
}

// Lookup indexes staged addresses by id.
type Lookup struct {
	byID  map[int64]Attributes
	order []int64
}

// Len returns the number of addresses.
func (l *Lookup) Len() int {
	return len(l.order)
}

// Resolve returns the address key and attributes for an optional address
// reference: a missing reference resolves to KeyNotInformed, an unknown one
// to KeyUnknown, each with placeholder attributes.
func (l *Lookup) Resolve(id int64, present bool, p scd.Placeholders) (int64, Attributes) {
	if !present {
		return scd.KeyNotInformed, Placeholder(p, scd.KeyNotInformed)
	}
	at, ok := l.byID[id]
	if !ok {
		return scd.KeyUnknown, Placeholder(p, scd.KeyUnknown)
	}
	return id, at
}

// Load reads stg_endereco into a lookup. Later rows with the same id
// replace earlier ones.
func Load(ctx context.Context, r dimensions.Reader) (*Lookup, error) {
	rows, err := r.Read(ctx, StagingTable, staging.ReadOptions{
		Columns:  []string{"id_endereco", "estado", "cidade", "bairro", "rua"},
		OrderBy:  []string{"id_endereco"},
		Observed: true,
	})
	if err != nil {
		return nil, err
	}

	l := &Lookup{byID: make(map[int64]Attributes, rows.Len())}
	for i := 0; i < rows.Len(); i++ {
		id, err := rows.Int64(i, "id_endereco")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		var at Attributes
		fields := []struct {
			column string
			dst    *string
		}{
			{"estado", &at.Estado},
			{"cidade", &at.Cidade},
			{"bairro", &at.Bairro},
			{"rua", &at.Rua},
		}
		for _, f := range fields {
			s, err := rows.String(i, f.column)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", StagingTable, err)
			}
			*f.dst = dimensions.CleanText(s)
		}
		if _, seen := l.byID[id]; !seen {
			l.order = append(l.order, id)
		}
		l.byID[id] = at
	}
	return l, nil
}
