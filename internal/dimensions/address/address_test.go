//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package address_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/address"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/dimensionstest"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

var columns = []string{"id_endereco", "estado", "cidade", "bairro", "rua"}

func TestExtract(t *testing.T) {
	reader := dimensionstest.NewReader().Table("stg_endereco", columns,
		[]any{int64(2), "RJ", "Niterói", "Icaraí", "Rua B"},
		[]any{int64(1), "SP", "Campinas", "Cambuí", "  Av.  Norte Sul "},
		[]any{int64(2), "RJ", "Niterói", "Icaraí", "Rua B, 10"},
	)

	records, err := (&address.Address{}).Extract(context.Background(), dimensions.Source{Reader: reader})
	require.NoError(t, err)

	opts, ok := reader.Options("stg_endereco")
	require.True(t, ok)
	assert.True(t, opts.Observed)
	require.Len(t, records, 2)

	assert.Equal(t, int64(2), records[0].NaturalKey)
	assert.Equal(t, []any{"RJ", "Niterói", "Icaraí", "Rua B, 10"}, records[0].Values)
	assert.Equal(t, []any{"SP", "Campinas", "Cambuí", "Av. Norte Sul"}, records[1].Values)
}

func TestLookupResolve(t *testing.T) {
	reader := dimensionstest.NewReader().Table("stg_endereco", columns,
		[]any{int64(7), "MG", "BH", "Savassi", "Rua C"},
	)
	l, err := address.Load(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())

	p := scd.DefaultPlaceholders()

	key, at := l.Resolve(7, true, p)
	assert.Equal(t, int64(7), key)
	assert.Equal(t, "Savassi", at.Bairro)

	key, at = l.Resolve(0, false, p)
	assert.Equal(t, scd.KeyNotInformed, key)
	assert.Equal(t, address.Placeholder(p, scd.KeyNotInformed), at)

	key, at = l.Resolve(8, true, p)
	assert.Equal(t, scd.KeyUnknown, key)
	assert.Equal(t, p.Unknown, at.Rua)
}

func TestShapeIsOverwrittenInPlace(t *testing.T) {
	shape := address.Shape()
	require.NoError(t, shape.Validate())
	assert.False(t, shape.Versioned)
}
