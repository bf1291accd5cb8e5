//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package category_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/category"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

func TestForProduct(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"arroz", category.Grocery, true},
		{" LEITE ", category.Dairy, true},
		{"SUCO", category.Breakfast, true},
		{"PAPEL HIGIÊNICO", category.Hygiene, true},
		{"PAPEL HIGIENICO", category.Cleaning, true},
		{"caviar", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := category.ForProduct(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, int64(1), category.Key(category.Breakfast))
	assert.Equal(t, int64(8), category.Key(category.Produce))
	assert.Equal(t, scd.KeyUnknown, category.Key("Eletrônicos"))
}

func TestProductsIsACopy(t *testing.T) {
	p := category.Products(category.Meat)
	require.NotEmpty(t, p)
	p[0] = "changed"
	assert.NotEqual(t, "changed", category.Products(category.Meat)[0])
}

func TestExtract(t *testing.T) {
	records, err := (&category.Category{}).Extract(context.Background(), dimensions.Source{})
	require.NoError(t, err)
	require.Len(t, records, len(category.Names))
	for i, r := range records {
		assert.Equal(t, int64(i+1), r.NaturalKey)
		assert.Equal(t, []any{category.Names[i]}, r.Values)
	}
}
