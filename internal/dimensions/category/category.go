//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package category implements the d_categoria dimension and the product
// name to category mapping.
package category

import (
	"context"
	"strings"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

// Name is the registered dimension name.
const Name = "categoria"

// Category names in natural key order (1-based).
const (
	Breakfast = "Café da manhã"
	Grocery   = "Mercearia"
	Meat      = "Carnes"
	Drinks    = "Bebidas"
	Hygiene   = "Higiene"
	Dairy     = "Laticínios/Frios"
	Cleaning  = "Limpeza"
	Produce   = "Hortifruti"
)

// Names lists the categories; a category's natural key is its position
// plus one.
var Names = []string{Breakfast, Grocery, Meat, Drinks, Hygiene, Dairy, Cleaning, Produce}

// products maps upper-cased product names to categories. A name listed
// under several categories takes the first one in Names order.
var products = map[string][]string{
	Breakfast: {"CAFE", "ACHOCOLATADO", "CEREAIS", "PÃO", "AÇUCAR", "SUCO",
		"ADOÇANTE", "BISCOITO", "GELEIA", "IOGURTE"},
	Grocery: {"ARROZ", "FEIJÃO", "FARINHA DE TRIGO", "AMIDO DE MILHO",
		"FERMENTO", "MACARRÃO", "MOLHO DE TOMATE", "AZEITE", "ÓLEO DE SOJA",
		"OVOS", "TEMPERO", "SAL", "FARINHA DE AVEIA", "EXTRATO DE TOMATE",
		"AÇUCAR 4 KG", "SAZON SABOR CARNE", "SAZON SABOR FRANGO"},
	Meat:   {"BIFE DE BOI", "FRANGO", "PEIXE", "CARNE MOIDA", "SALSICHA", "LINGUIÇA"},
	Drinks: {"SUCO", "CERVEJA", "REFRIGERANTE", "VINHO"},
	Hygiene: {"SABONETE", "CREME DENTAL", "SHAMPOO", "CONDICIONADOR",
		"ABSORVENTE", "PAPEL HIGIÊNICO", "FRALDA"},
	Dairy: {"LEITE", "PRESUNTO", "QUEIJO", "REQUEIJÃO", "MANTEIGA",
		"CREME DE LEITE", "MANTEIGA SEM SAL"},
	Cleaning: {"AGUA SANITARIA", "SABÃO EM PÓ", "PALHA DE AÇO", "AMACIANTE",
		"DETERGENTE", "SACO DE LIXO", "DESINFETANTE", "PAPEL TOALHA",
		"PAPEL HIGIENICO"},
	Produce: {"ALFACE", "CEBOLA", "ALHO", "TOMATE", "LIMÃO", "BANANA", "MAÇÃ",
		"BATATA", "BATATA DOCE", "BATATA INGLESA"},
}

var byProduct = func() map[string]string {
	m := make(map[string]string)
	for _, cat := range Names {
		for _, p := range products[cat] {
			if _, ok := m[p]; !ok {
				m[p] = cat
			}
		}
	}
	return m
}()

// ForProduct returns the category of a product name, or ok=false when the
// name is not catalogued.
func ForProduct(name string) (string, bool) {
	cat, ok := byProduct[strings.ToUpper(strings.TrimSpace(name))]
	return cat, ok
}

// Key returns the natural key of a category name, or scd.KeyUnknown.
func Key(name string) int64 {
	for i, n := range Names {
		if n == name {
			return int64(i + 1)
		}
	}
	return scd.KeyUnknown
}

// Products returns the catalogued product names of a category.
func Products(cat string) []string {
	return append([]string(nil), products[cat]...)
}

// Category is the product category dimension.
type Category struct{}

func init() {
	dimensions.Register(&Category{})
}

// Name returns the dimension name.
func (c *Category) Name() string {
	return Name
}

// Description returns a human-readable description.
func (c *Category) Description() string {
	return "Fixed list of product categories"
}

// Shape returns the d_categoria descriptor.
func (c *Category) Shape() *scd.Shape {
	return Shape()
}

// Shape returns the d_categoria descriptor.
func Shape() *scd.Shape {
	return &scd.Shape{
		Name:         Name,
		Table:        "d_categoria",
		SurrogateKey: "sk_categoria",
		NaturalKey:   "cd_categoria",
		Columns: []scd.Column{
			{Name: "ds_categoria", Kind: scd.KindText, Policy: scd.Cosmetic},
		},
	}
}

// Extract returns the fixed category list. Nothing is read from staging.
func (c *Category) Extract(ctx context.Context, src dimensions.Source) ([]scd.Record, error) {
	records := make([]scd.Record, len(Names))
	for i, n := range Names {
		records[i] = scd.Record{NaturalKey: int64(i + 1), Values: []any{n}}
	}
	return records, nil
}
