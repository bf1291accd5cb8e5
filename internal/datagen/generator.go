//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates synthetic staging data for the warehouse.
package datagen

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/address"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/category"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/customer"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/employee"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/payment"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/product"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/store"
	"github.com/pgEdge/pgedge-retail-dw/internal/fact"
	"github.com/pgEdge/pgedge-retail-dw/internal/logging"
	"github.com/pgEdge/pgedge-retail-dw/internal/warehouse"
)

// Counts sets how many rows each staging table receives.
type Counts struct {
	Addresses int `mapstructure:"addresses"`
	Customers int `mapstructure:"customers"`
	Stores    int `mapstructure:"stores"`
	Products  int `mapstructure:"products"`
	Employees int `mapstructure:"employees"`
	Sales     int `mapstructure:"sales"`
}

// DefaultCounts returns a small data set suitable for a demo run.
func DefaultCounts() Counts {
	return Counts{
		Addresses: 200,
		Customers: 100,
		Stores:    5,
		Products:  60,
		Employees: 20,
		Sales:     500,
	}
}

// Validate checks that every count is positive.
func (c Counts) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"addresses", c.Addresses},
		{"customers", c.Customers},
		{"stores", c.Stores},
		{"products", c.Products},
		{"employees", c.Employees},
		{"sales", c.Sales},
	}
	for _, ch := range checks {
		if ch.value < 1 {
			return fmt.Errorf("seed.%s must be at least 1", ch.name)
		}
	}
	return nil
}

// Table is one generated staging table.
type Table struct {
	Name    string
	Columns []warehouse.ColumnDef
	Rows    [][]any
}

// TableWriter replaces the contents of a table.
type TableWriter interface {
	ReplaceTable(ctx context.Context, schema, table string, columns []warehouse.ColumnDef, rows [][]any) error
}

type payMethod struct {
	name, description string
	// weight is the relative share of sales paid this way.
	weight int
}

var payMethods = []payMethod{
	{"Dinheiro", "pagamento em espécie.", 15},
	{"Cartão de crédito", "cartão de crédito em até 12 vezes,", 30},
	{"Cartão de débito", "débito à vista.", 20},
	{"PIX", "transferência instantânea", 30},
	{"Boleto", "boleto bancário,", 5},
}

// Generator produces a consistent set of staging tables.
type Generator struct {
	faker  *Faker
	counts Counts
	now    time.Time
}

// NewGenerator creates a generator. A zero seed picks a random one. Sales
// fall in the year before now.
func NewGenerator(counts Counts, seed uint64, now time.Time) *Generator {
	f := NewFaker()
	if seed != 0 {
		f = NewFakerWithSeed(seed)
	}
	return &Generator{faker: f, counts: counts, now: now.UTC()}
}

// Faker returns the generator's random source.
func (g *Generator) Faker() *Faker {
	return g.faker
}

func bigint(name string) warehouse.ColumnDef {
	return warehouse.ColumnDef{Name: name, SQLType: "BIGINT", NotNull: true}
}

func nullBigint(name string) warehouse.ColumnDef {
	return warehouse.ColumnDef{Name: name, SQLType: "BIGINT"}
}

func text(name string) warehouse.ColumnDef {
	return warehouse.ColumnDef{Name: name, SQLType: "TEXT"}
}

// Generate builds every staging table. Tables referencing others are
// generated after them.
func (g *Generator) Generate() []Table {
	return []Table{
		g.addresses(),
		g.customers(),
		g.stores(),
		g.employees(),
		g.products(),
		g.payments(),
	}
}

// Sales builds stg_venda and stg_item_venda.
func (g *Generator) Sales() (sales, items Table) {
	sales = Table{
		Name: fact.SalesTable,
		Columns: []warehouse.ColumnDef{
			bigint("id_venda"), nullBigint("id_pagamento"), nullBigint("id_cliente"),
			nullBigint("id_func"), nullBigint("id_loja"), text("nfc"),
			{Name: "data_venda", SQLType: "TIMESTAMPTZ", NotNull: true},
		},
	}
	items = Table{
		Name:    fact.ItemsTable,
		Columns: []warehouse.ColumnDef{bigint("id_venda"), bigint("id_produto"), bigint("qtd_produto")},
	}

	payIDs := make([]int64, len(payMethods))
	payWeights := make([]int, len(payMethods))
	for i, p := range payMethods {
		payIDs[i] = int64(i + 1)
		payWeights[i] = p.weight
	}

	f := g.faker
	start := g.now.AddDate(-1, 0, 0)
	for id := 1; id <= g.counts.Sales; id++ {
		var pay, cust any = ChooseWeighted(f, payIDs, payWeights), int64(f.Int(1, g.counts.Customers))
		if f.Chance(0.02) {
			pay = nil
		}
		if f.Chance(0.03) {
			cust = nil
		}
		at := f.DateRange(start, g.now).Truncate(time.Second)
		sales.Rows = append(sales.Rows, []any{
			int64(id), pay, cust,
			int64(f.Int(1, g.counts.Employees)),
			int64(f.Int(1, g.counts.Stores)),
			f.Digits(44),
			at,
		})

		lines := min(f.Int(1, 4), g.counts.Products)
		picked := make(map[int]bool, lines)
		for len(picked) < lines {
			p := f.Int(1, g.counts.Products)
			if picked[p] {
				continue
			}
			picked[p] = true
			items.Rows = append(items.Rows, []any{int64(id), int64(p), int64(f.Int(1, 10))})
		}
	}
	return sales, items
}

func (g *Generator) addresses() Table {
	t := Table{
		Name:    address.StagingTable,
		Columns: []warehouse.ColumnDef{bigint("id_endereco"), text("estado"), text("cidade"), text("bairro"), text("rua")},
	}
	f := g.faker
	for id := 1; id <= g.counts.Addresses; id++ {
		t.Rows = append(t.Rows, []any{int64(id), f.State(), f.City(), f.Neighborhood(), f.Street()})
	}
	return t
}

// addressRef links to a staged address, occasionally to none or to one
// that was never staged.
func (g *Generator) addressRef() any {
	f := g.faker
	switch {
	case f.Chance(0.02):
		return nil
	case f.Chance(0.01):
		return int64(g.counts.Addresses + f.Int(1, 1000))
	}
	return int64(f.Int(1, g.counts.Addresses))
}

func (g *Generator) customers() Table {
	t := Table{
		Name: customer.StagingTable,
		Columns: []warehouse.ColumnDef{
			bigint("id_cliente"), text("nome"), text("cpf"), text("tel"), nullBigint("id_endereco"),
		},
	}
	f := g.faker
	for id := 1; id <= g.counts.Customers; id++ {
		t.Rows = append(t.Rows, []any{int64(id), f.Name(), f.CPF(), f.Phone(), g.addressRef()})
	}
	return t
}

func (g *Generator) stores() Table {
	t := Table{
		Name: store.StagingTable,
		Columns: []warehouse.ColumnDef{
			bigint("id_loja"), text("nome_loja"), text("razao_social"), text("cnpj"),
			text("telefone"), nullBigint("id_endereco"),
		},
	}
	f := g.faker
	for id := 1; id <= g.counts.Stores; id++ {
		company := f.Company()
		t.Rows = append(t.Rows, []any{
			int64(id),
			fmt.Sprintf("Loja %s", f.Neighborhood()),
			company + " LTDA",
			f.CNPJ(),
			f.Phone(),
			g.addressRef(),
		})
	}
	return t
}

func (g *Generator) employees() Table {
	t := Table{
		Name: employee.StagingTable,
		Columns: []warehouse.ColumnDef{
			bigint("id_funcionario"), text("nome"), text("cpf"), text("tel"),
			{Name: "data_nascimento", SQLType: "DATE", NotNull: true},
		},
	}
	f := g.faker
	from := time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2004, time.December, 31, 0, 0, 0, 0, time.UTC)
	for id := 1; id <= g.counts.Employees; id++ {
		born := f.DateRange(from, to)
		y, m, d := born.Date()
		t.Rows = append(t.Rows, []any{
			int64(id), f.Name(), f.CPF(), f.Phone(),
			time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		})
	}
	return t
}

// catalogue lists every categorised product name in category order.
func catalogue() []string {
	var names []string
	for _, cat := range category.Names {
		names = append(names, category.Products(cat)...)
	}
	return names
}

func (g *Generator) products() Table {
	t := Table{
		Name: product.StagingTable,
		Columns: []warehouse.ColumnDef{
			bigint("id_produto"), text("nome_produto"), text("cod_barra"), text("preco_custo"),
			text("percentual_lucro"), {Name: "data_cadastro", SQLType: "TIMESTAMPTZ"}, text("ativo"),
		},
	}
	f := g.faker
	names := catalogue()
	start := g.now.AddDate(-3, 0, 0)
	for id := 1; id <= g.counts.Products; id++ {
		name := names[(id-1)%len(names)]
		if f.Chance(0.05) {
			name = "PRODUTO AVULSO " + f.Digits(3)
		}
		active := "S"
		if f.Chance(0.1) {
			active = "N"
		}
		t.Rows = append(t.Rows, []any{
			int64(id),
			name,
			f.Barcode(),
			CommaDecimal(f.Money(1, 80)),
			CommaDecimal(f.Money(5, 60)),
			f.DateRange(start, g.now).Truncate(time.Second),
			active,
		})
	}
	return t
}

func (g *Generator) payments() Table {
	t := Table{
		Name:    payment.StagingTable,
		Columns: []warehouse.ColumnDef{bigint("id_pagamento"), text("nome"), text("descricao")},
	}
	for i, p := range payMethods {
		t.Rows = append(t.Rows, []any{int64(i + 1), p.name, p.description})
	}
	return t
}

// Seeder writes generated staging tables.
type Seeder struct {
	writer TableWriter
	schema string
	gen    *Generator
}

// NewSeeder creates a seeder writing into the staging schema.
func NewSeeder(w TableWriter, schema string, gen *Generator) *Seeder {
	return &Seeder{writer: w, schema: schema, gen: gen}
}

// Seed replaces every staging table with generated data and returns the
// row count per table.
func (s *Seeder) Seed(ctx context.Context) (map[string]int, error) {
	tables := s.gen.Generate()
	sales, items := s.gen.Sales()
	tables = append(tables, sales, items)

	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		progress := NewProgressReporter(s.schema+"."+t.Name, int64(len(t.Rows)), DefaultBatchConfig().ProgressInterval)
		if err := s.writer.ReplaceTable(ctx, s.schema, t.Name, t.Columns, t.Rows); err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", t.Name, err)
		}
		progress.Update(int64(len(t.Rows)))
		progress.Done()
		counts[t.Name] = len(t.Rows)
	}
	return counts, nil
}

// BatchConfig configures progress reporting.
type BatchConfig struct {
	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns the default progress configuration.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{ProgressInterval: 100000}
}

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval && p.totalRows > 0 {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}
