//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/dimensionstest"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/store"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

func TestExtract(t *testing.T) {
	reader := dimensionstest.NewReader().
		Table("stg_endereco", []string{"id_endereco", "estado", "cidade", "bairro", "rua"},
			[]any{int64(5), "PR", "Curitiba", "Batel", "Rua D"},
		).
		Table("stg_loja", []string{"id_loja", "nome_loja", "razao_social", "cnpj", "telefone", "id_endereco"},
			[]any{int64(1), "Loja Batel", "Mercado Batel LTDA", "12.345.678/0001-90", "41 3333-2222", int64(5)},
		)

	src := dimensions.Source{Reader: reader, Placeholders: scd.DefaultPlaceholders()}
	records, err := (&store.Store{}).Extract(context.Background(), src)
	require.NoError(t, err)

	opts, ok := reader.Options("stg_loja")
	require.True(t, ok)
	assert.True(t, opts.Observed)
	require.Len(t, records, 1)

	assert.Equal(t, scd.Record{
		NaturalKey: 1,
		Values: []any{"Loja Batel", "Mercado Batel LTDA", "12345678000190", "4133332222",
			int64(5), "PR", "Curitiba", "Batel", "Rua D"},
	}, records[0])

	shape := store.Shape()
	require.NoError(t, shape.Validate())
	assert.Equal(t, store.AddressColumn, shape.Columns[4].Name)
	assert.Equal(t, scd.Cosmetic, shape.Columns[3].Policy)
}
