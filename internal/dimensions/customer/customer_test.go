//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package customer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/customer"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/dimensionstest"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

func TestExtract(t *testing.T) {
	reader := dimensionstest.NewReader().
		Table("stg_endereco", []string{"id_endereco", "estado", "cidade", "bairro", "rua"},
			[]any{int32(10), "SP", "São Paulo", "Centro", " Rua A "},
		).
		Table("stg_cliente", []string{"id_cliente", "nome", "cpf", "tel", "id_endereco"},
			[]any{int32(100), " Ana  Souza", "123.456.789-09", "(11) 9999-0000", int32(10)},
			[]any{int32(200), "Bruno", "98765432100", nil, nil},
			[]any{int32(300), "Carla", "11122233344", "1133334444", int32(99)},
		)

	src := dimensions.Source{Reader: reader, Placeholders: scd.DefaultPlaceholders()}
	records, err := (&customer.Customer{}).Extract(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, scd.Record{
		NaturalKey: 100,
		Values:     []any{"Ana Souza", "12345678909", "1199990000", int64(10), "SP", "São Paulo", "Centro", "Rua A"},
	}, records[0])

	notInformed := scd.DefaultPlaceholders().NotInformed
	assert.Equal(t, []any{"Bruno", "98765432100", "", scd.KeyNotInformed,
		notInformed, notInformed, notInformed, notInformed}, records[1].Values)

	unknown := scd.DefaultPlaceholders().Unknown
	assert.Equal(t, scd.KeyUnknown, records[2].Values[3])
	assert.Equal(t, unknown, records[2].Values[4])

	assert.Equal(t, []string{"stg_endereco", "stg_cliente"}, reader.Reads())

	shape := customer.Shape()
	for _, r := range records {
		_, err := shape.Normalize(r)
		assert.NoError(t, err)
	}
}

func TestExtractDuplicatesKeepStagedOrder(t *testing.T) {
	reader := dimensionstest.NewReader().
		Table("stg_endereco", []string{"id_endereco", "estado", "cidade", "bairro", "rua"}).
		Table("stg_cliente", []string{"id_cliente", "nome", "cpf", "tel", "id_endereco"},
			[]any{int32(100), "Ana", "111", nil, nil},
			[]any{int32(100), "Ana Souza", "111", nil, nil},
		)

	records, err := (&customer.Customer{}).Extract(context.Background(), dimensions.Source{
		Reader:       reader,
		Placeholders: scd.DefaultPlaceholders(),
	})
	require.NoError(t, err)

	opts, ok := reader.Options("stg_cliente")
	require.True(t, ok)
	assert.True(t, opts.Observed)
	assert.Equal(t, []string{"id_cliente"}, opts.OrderBy)

	unique, duplicates := scd.Dedupe(records)
	assert.Equal(t, 1, duplicates)
	require.Len(t, unique, 1)
	assert.Equal(t, "Ana Souza", unique[0].Values[0])
}

func TestExtractMissingStaging(t *testing.T) {
	reader := dimensionstest.NewReader().
		Table("stg_endereco", []string{"id_endereco", "estado", "cidade", "bairro", "rua"})

	_, err := (&customer.Customer{}).Extract(context.Background(), dimensions.Source{Reader: reader})
	assert.ErrorIs(t, err, staging.ErrNotFound)
}

func TestShape(t *testing.T) {
	shape := customer.Shape()
	require.NoError(t, shape.Validate())
	assert.True(t, shape.Versioned)
	assert.Equal(t, customer.AddressColumn, shape.Columns[3].Name)
	assert.Equal(t, scd.Cosmetic, shape.Columns[0].Policy)
	for _, c := range shape.Columns[1:] {
		assert.Equal(t, scd.Tracked, c.Policy, c.Name)
	}
}
