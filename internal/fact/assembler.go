//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package fact assembles the f_venda sales fact from staged sales and the
// loaded dimensions.
package fact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/address"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/calendar"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/customer"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/employee"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/payment"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/product"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/store"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
	"github.com/pgEdge/pgedge-retail-dw/internal/warehouse"
)

const (
	// Table is the fact table name.
	Table = "f_venda"

	// SalesTable and ItemsTable are the staged sale headers and lines.
	SalesTable = "stg_venda"
	ItemsTable = "stg_item_venda"
)

// Columns is the physical layout of f_venda.
var Columns = []warehouse.ColumnDef{
	{Name: "sk_forma_pagamento", SQLType: "BIGINT", NotNull: true},
	{Name: "sk_cliente", SQLType: "BIGINT", NotNull: true},
	{Name: "sk_funcionario", SQLType: "BIGINT", NotNull: true},
	{Name: "sk_loja", SQLType: "BIGINT", NotNull: true},
	{Name: "sk_data", SQLType: "BIGINT", NotNull: true},
	{Name: "sk_produto", SQLType: "BIGINT", NotNull: true},
	{Name: "sk_endereco_loja", SQLType: "BIGINT", NotNull: true},
	{Name: "sk_endereco_cliente", SQLType: "BIGINT", NotNull: true},
	{Name: "nu_nfc", SQLType: "TEXT", NotNull: true},
	{Name: "qt_produto", SQLType: "BIGINT", NotNull: true},
	{Name: "dt_venda", SQLType: "TIMESTAMPTZ", NotNull: true},
}

// VersionReader returns the full history of a dimension.
type VersionReader interface {
	Versions(ctx context.Context, shape *scd.Shape) ([]scd.Version, error)
}

// Writer replaces the contents of a fact table.
type Writer interface {
	ReplaceTable(ctx context.Context, schema, table string, columns []warehouse.ColumnDef, rows [][]any) error
}

// Result summarizes an assembly.
type Result struct {
	Sales int
	Rows  int

	// Orphans counts sale lines whose header is not staged.
	Orphans int

	// Unknown counts, per dimension, keys that resolved to the unknown
	// sentinel.
	Unknown map[string]int
}

// Assembler builds f_venda.
type Assembler struct {
	reader   dimensions.Reader
	versions VersionReader
	writer   Writer
	schema   string
}

// NewAssembler creates an assembler that reads staged sales through reader,
// dimension history through versions and writes f_venda into schema.
func NewAssembler(reader dimensions.Reader, versions VersionReader, writer Writer, schema string) *Assembler {
	return &Assembler{reader: reader, versions: versions, writer: writer, schema: schema}
}

type sale struct {
	payment, customer, employee, store optionalKey
	nfc                                string
	at                                 time.Time
}

type optionalKey struct {
	id      int64
	present bool
}

type timelines struct {
	payment, customer, employee, store, calendar, product, address *scd.Timeline
}

// Assemble rebuilds f_venda. Every staged sale line produces one row whose
// dimension keys are the versions valid at the sale timestamp.
func (a *Assembler) Assemble(ctx context.Context) (*Result, error) {
	tl, err := a.loadTimelines(ctx)
	if err != nil {
		return nil, err
	}

	sales, order, err := a.readSales(ctx)
	if err != nil {
		return nil, err
	}

	items, err := a.reader.Read(ctx, ItemsTable, staging.ReadOptions{
		Columns: []string{"id_venda", "id_produto", "qtd_produto"},
		OrderBy: []string{"id_venda", "id_produto"},
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Sales: len(order), Unknown: make(map[string]int)}
	r := &resolver{tl: tl, res: res}

	rows := make([][]any, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		saleID, err := items.Int64(i, "id_venda")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ItemsTable, err)
		}
		s, ok := sales[saleID]
		if !ok {
			res.Orphans++
			continue
		}
		productID, hasProduct, err := items.NullInt64(i, "id_produto")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ItemsTable, err)
		}
		qty, err := items.Int64(i, "qtd_produto")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ItemsTable, err)
		}

		customerKey, customerAddr := r.withAddress(customer.Name, tl.customer, s.customer, s.at, customer.AddressColumn)
		storeKey, storeAddr := r.withAddress(store.Name, tl.store, s.store, s.at, store.AddressColumn)

		rows = append(rows, []any{
			r.key(payment.Name, tl.payment, s.payment, s.at),
			customerKey,
			r.key(employee.Name, tl.employee, s.employee, s.at),
			storeKey,
			r.key(calendar.Name, tl.calendar, optionalKey{id: calendar.Key(s.at), present: true}, s.at),
			r.key(product.Name, tl.product, optionalKey{id: productID, present: hasProduct}, s.at),
			storeAddr,
			customerAddr,
			s.nfc,
			qty,
			s.at,
		})
	}
	res.Rows = len(rows)

	if err := a.writer.ReplaceTable(ctx, a.schema, Table, Columns, rows); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", Table, err)
	}

	ev := logging.Info().
		Str("table", a.schema+"."+Table).
		Int("sales", res.Sales).
		Int("rows", res.Rows).
		Int("orphans", res.Orphans)
	for dim, n := range res.Unknown {
		ev = ev.Int("unknown_"+dim, n)
	}
	ev.Msg("Assembled sales fact")

	return res, nil
}

func (a *Assembler) loadTimelines(ctx context.Context) (*timelines, error) {
	load := func(shape *scd.Shape) (*scd.Timeline, error) {
		shape = shape.WithSchema(a.schema)
		versions, err := a.versions.Versions(ctx, shape)
		if errors.Is(err, scd.ErrDimensionNotFound) {
			return nil, fmt.Errorf("dimension %s must be loaded before %s: %w", shape.Name, Table, err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", shape.QualifiedName(), err)
		}
		return scd.NewTimeline(shape, versions), nil
	}

	var tl timelines
	targets := []struct {
		shape *scd.Shape
		dst   **scd.Timeline
	}{
		{payment.Shape(), &tl.payment},
		{customer.Shape(), &tl.customer},
		{employee.Shape(), &tl.employee},
		{store.Shape(), &tl.store},
		{calendar.Shape(), &tl.calendar},
		{product.Shape(), &tl.product},
		{address.Shape(), &tl.address},
	}
	for _, t := range targets {
		timeline, err := load(t.shape)
		if err != nil {
			return nil, err
		}
		*t.dst = timeline
	}
	return &tl, nil
}

func (a *Assembler) readSales(ctx context.Context) (map[int64]sale, []int64, error) {
	rows, err := a.reader.Read(ctx, SalesTable, staging.ReadOptions{
		Columns: []string{"id_venda", "id_pagamento", "id_cliente", "id_func", "id_loja", "nfc", "data_venda"},
		OrderBy: []string{"id_venda"},
	})
	if err != nil {
		return nil, nil, err
	}

	sales := make(map[int64]sale, rows.Len())
	order := make([]int64, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		id, err := rows.Int64(i, "id_venda")
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", SalesTable, err)
		}
		var s sale
		refs := []struct {
			column string
			dst    *optionalKey
		}{
			{"id_pagamento", &s.payment},
			{"id_cliente", &s.customer},
			{"id_func", &s.employee},
			{"id_loja", &s.store},
		}
		for _, ref := range refs {
			v, ok, err := rows.NullInt64(i, ref.column)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", SalesTable, err)
			}
			*ref.dst = optionalKey{id: v, present: ok}
		}
		if s.nfc, err = rows.String(i, "nfc"); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", SalesTable, err)
		}
		if s.at, err = rows.Time(i, "data_venda"); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", SalesTable, err)
		}
		if _, dup := sales[id]; !dup {
			order = append(order, id)
		}
		sales[id] = s
	}
	return sales, order, nil
}

type resolver struct {
	tl  *timelines
	res *Result
}

// key resolves an optional natural key: NULL is not informed, a natural
// key absent from the dimension is unknown.
func (r *resolver) key(dim string, tl *scd.Timeline, ref optionalKey, at time.Time) int64 {
	if !ref.present {
		return scd.KeyNotInformed
	}
	k := tl.LinkKey(ref.id, at)
	if k == scd.KeyUnknown && ref.id != scd.KeyUnknown {
		r.res.Unknown[dim]++
	}
	return k
}

// withAddress resolves a customer or store and then the address recorded on
// the resolved version. Sentinel rows propagate their key to the address.
func (r *resolver) withAddress(dim string, tl *scd.Timeline, ref optionalKey, at time.Time, column string) (int64, int64) {
	k := r.key(dim, tl, ref, at)
	if scd.IsSentinelKey(k) {
		return k, k
	}
	v, _ := tl.Link(ref.id, at)
	idx := tl.Shape().ColumnIndex(column)
	addrNK, ok := v.Values[idx].(int64)
	switch {
	case !ok:
		return k, scd.KeyUnknown
	case scd.IsSentinelKey(addrNK):
		return k, addrNK
	}
	return k, r.key(address.Name, r.tl.address, optionalKey{id: addrNK, present: true}, at)
}
