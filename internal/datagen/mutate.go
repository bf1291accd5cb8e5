//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/pgEdge/pgedge-retail-dw/internal/db"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/address"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/customer"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/product"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
)

// Mutation counts the staged rows changed by Mutate.
type Mutation struct {
	Moves        int
	Renames      int
	PriceChanges int
}

// Mutate changes a fraction of staged customers and products so the next
// run has versioned and display-only changes to apply: customers move to
// another address, customers are renamed, and product cost prices change.
func Mutate(ctx context.Context, d db.DB, schema string, f *Faker, fraction float64) (*Mutation, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("mutation fraction must be in (0, 1], got %v", fraction)
	}

	tx, err := d.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	maxID := func(table, column string) (int, error) {
		var n int64
		q := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) FROM %s",
			pgx.Identifier{column}.Sanitize(), pgx.Identifier{schema, table}.Sanitize())
		if err := tx.QueryRow(ctx, q).Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to size %s.%s: %w", schema, table, err)
		}
		return int(n), nil
	}

	customers, err := maxID(customer.StagingTable, "id_cliente")
	if err != nil {
		return nil, err
	}
	addresses, err := maxID(address.StagingTable, "id_endereco")
	if err != nil {
		return nil, err
	}
	products, err := maxID(product.StagingTable, "id_produto")
	if err != nil {
		return nil, err
	}

	m := &Mutation{}
	update := func(table, set, where string, value any, id int) error {
		q := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2",
			pgx.Identifier{schema, table}.Sanitize(), pgx.Identifier{set}.Sanitize(), pgx.Identifier{where}.Sanitize())
		if _, err := tx.Exec(ctx, q, value, int64(id)); err != nil {
			return fmt.Errorf("failed to update %s.%s: %w", schema, table, err)
		}
		return nil
	}

	if customers > 0 && addresses > 0 {
		for _, id := range pick(f, customers, fraction) {
			if err := update(customer.StagingTable, "id_endereco", "id_cliente", int64(f.Int(1, addresses)), id); err != nil {
				return nil, err
			}
			m.Moves++
		}
		for _, id := range pick(f, customers, fraction) {
			if err := update(customer.StagingTable, "nome", "id_cliente", f.Name(), id); err != nil {
				return nil, err
			}
			m.Renames++
		}
	}
	if products > 0 {
		for _, id := range pick(f, products, fraction) {
			if err := update(product.StagingTable, "preco_custo", "id_produto", CommaDecimal(f.Money(1, 80)), id); err != nil {
				return nil, err
			}
			m.PriceChanges++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit mutations: %w", err)
	}
	committed = true

	logging.Info().
		Str("schema", schema).
		Int("moves", m.Moves).
		Int("renames", m.Renames).
		Int("price_changes", m.PriceChanges).
		Msg("Mutated staging data")

	return m, nil
}

// pick returns distinct ids in [1, n], at least one and about fraction*n.
func pick(f *Faker, n int, fraction float64) []int {
	want := max(1, int(math.Ceil(float64(n)*fraction)))
	want = min(want, n)
	seen := make(map[int]bool, want)
	ids := make([]int, 0, want)
	for len(ids) < want {
		id := f.Int(1, n)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
