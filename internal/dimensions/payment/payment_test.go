//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package payment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/dimensionstest"
	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions/payment"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pagamento à vista.", "PAGAMENTO À VISTA"},
		{"cartão de crédito,", "CARTÃO DE CRÉDITO"},
		{"  pix  instantâneo ., ", "PIX INSTANTÂNEO"},
		{"boleto", "BOLETO"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, payment.Describe(tt.in))
		})
	}
}

func TestExtract(t *testing.T) {
	reader := dimensionstest.NewReader().
		Table("stg_forma_pagamento", []string{"id_pagamento", "nome", "descricao"},
			[]any{int64(1), "Dinheiro", "pagamento em espécie."},
			[]any{int64(2), " PIX ", nil},
		)

	records, err := (&payment.Payment{}).Extract(context.Background(), dimensions.Source{Reader: reader})
	require.NoError(t, err)

	opts, ok := reader.Options("stg_forma_pagamento")
	require.True(t, ok)
	assert.True(t, opts.Observed)
	require.Len(t, records, 2)
	assert.Equal(t, []any{"Dinheiro", "PAGAMENTO EM ESPÉCIE"}, records[0].Values)
	assert.Equal(t, []any{"PIX", ""}, records[1].Values)
	assert.False(t, payment.Shape().Versioned)
}
