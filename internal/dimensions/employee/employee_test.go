//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package employee_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/dimensionstest"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/employee"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

func TestExtract(t *testing.T) {
	reader := dimensionstest.NewReader().
		Table("stg_funcionario", []string{"id_funcionario", "nome", "cpf", "tel", "data_nascimento"},
			[]any{int64(3), "Davi  Lima", "111.222.333-44", "(21) 2222-1111", "1990-05-17"},
			[]any{int64(4), "Eva", "55566677788", "", time.Date(1985, time.December, 1, 15, 0, 0, 0, time.UTC)},
		)

	records, err := (&employee.Employee{}).Extract(context.Background(), dimensions.Source{Reader: reader})
	require.NoError(t, err)

	opts, ok := reader.Options("stg_funcionario")
	require.True(t, ok)
	assert.True(t, opts.Observed)
	require.Len(t, records, 2)

	assert.Equal(t, []any{"Davi Lima", "11122233344", "2122221111",
		time.Date(1990, time.May, 17, 0, 0, 0, 0, time.UTC)}, records[0].Values)
	assert.Equal(t, time.Date(1985, time.December, 1, 0, 0, 0, 0, time.UTC), records[1].Values[3])
}

func TestExtractBadDate(t *testing.T) {
	reader := dimensionstest.NewReader().
		Table("stg_funcionario", []string{"id_funcionario", "nome", "cpf", "tel", "data_nascimento"},
			[]any{int64(3), "Davi", "1", "2", "17/05/1990"},
		)

	_, err := (&employee.Employee{}).Extract(context.Background(), dimensions.Source{Reader: reader})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stg_funcionario")
}

func TestShape(t *testing.T) {
	shape := employee.Shape()
	require.NoError(t, shape.Validate())
	idx := shape.ColumnIndex("dt_nascimento")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, scd.Tracked, shape.Columns[idx].Policy)
}
