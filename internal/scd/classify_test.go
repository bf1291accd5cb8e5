//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package scd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
)

func activeCustomer(sk, nk int64, name, cpf string, address int64) scd.Version {
	return scd.Version{
		SurrogateKey: sk,
		NaturalKey:   nk,
		Values:       []any{name, cpf, address},
		ValidFrom:    scd.DefaultEpoch,
		Active:       true,
	}
}

func TestClassify(t *testing.T) {
	shape := customerShape()
	active := []scd.Version{
		activeCustomer(1, 100, "Ana", "111", 10),
		activeCustomer(2, 200, "Bruno", "222", 20),
		activeCustomer(3, 300, "Carla", "333", 30),
		activeCustomer(4, 400, "Davi", "444", 40),
	}
	staged := []scd.Record{
		customer(100, "Ana", "111", 11),      // address moved
		customer(200, "Bruno S.", "222", 20), // name only
		customer(300, "Carla", "333", 30),    // unchanged
		customer(400, "D. Lima", "999", 40),  // both, tracked wins
		customer(500, "Eva", "555", 50),      // new
	}

	c, err := scd.Classify(shape, staged, active)
	require.NoError(t, err)

	require.Len(t, c.Inserts, 1)
	assert.Equal(t, int64(500), c.Inserts[0].NaturalKey)

	require.Len(t, c.AttributeChanges, 2)
	assert.Equal(t, int64(100), c.AttributeChanges[0].Staged.NaturalKey)
	assert.Equal(t, []string{"cd_endereco_cliente"}, c.AttributeChanges[0].Columns)
	assert.Equal(t, int64(400), c.AttributeChanges[1].Staged.NaturalKey)
	assert.Equal(t, []string{"cpf_cliente", "nm_cliente"}, c.AttributeChanges[1].Columns)
	assert.Equal(t, int64(4), c.AttributeChanges[1].Current.SurrogateKey)

	require.Len(t, c.DisplayOnlyChanges, 1)
	assert.Equal(t, int64(200), c.DisplayOnlyChanges[0].Staged.NaturalKey)
	assert.Equal(t, []string{"nm_cliente"}, c.DisplayOnlyChanges[0].Columns)

	require.Len(t, c.Unchanged, 1)
	assert.Equal(t, int64(300), c.Unchanged[0].NaturalKey)

	assert.Equal(t, 3, c.NewKeys())
}

func TestClassifyIgnoresSentinels(t *testing.T) {
	shape := customerShape()
	active := scd.Sentinels(shape, scd.DefaultPlaceholders(), scd.DefaultEpoch)

	c, err := scd.Classify(shape, []scd.Record{customer(1, "Ana", "1", 1)}, active)
	require.NoError(t, err)
	assert.Len(t, c.Inserts, 1)
}

func TestClassifyRejectsMultipleActive(t *testing.T) {
	shape := customerShape()
	active := []scd.Version{
		activeCustomer(1, 100, "Ana", "111", 10),
		activeCustomer(5, 100, "Ana", "111", 11),
	}

	_, err := scd.Classify(shape, nil, active)
	assert.ErrorIs(t, err, scd.ErrMultipleActive)
}

func TestClassifyIsIdempotent(t *testing.T) {
	shape := customerShape()
	active := []scd.Version{
		activeCustomer(1, 100, "Ana", "111", 10),
		activeCustomer(2, 200, "Bruno", "222", 20),
	}
	staged := []scd.Record{
		customer(100, "Ana", "111", 10),
		customer(200, "Bruno", "222", 20),
	}

	for i := 0; i < 2; i++ {
		c, err := scd.Classify(shape, staged, active)
		require.NoError(t, err)
		assert.Empty(t, c.Inserts)
		assert.Empty(t, c.AttributeChanges)
		assert.Empty(t, c.DisplayOnlyChanges)
		assert.Len(t, c.Unchanged, 2)
	}
}

func TestDedupeLastWins(t *testing.T) {
	records := []scd.Record{
		customer(100, "Ana", "111", 10),
		customer(200, "Bruno", "222", 20),
		customer(100, "Ana Maria", "111", 12),
		customer(100, "Ana M.", "111", 13),
	}

	unique, dups := scd.Dedupe(records)
	assert.Equal(t, 2, dups)
	require.Len(t, unique, 2)
	assert.Equal(t, int64(100), unique[0].NaturalKey)
	assert.Equal(t, []any{"Ana M.", "111", int64(13)}, unique[0].Values)
	assert.Equal(t, int64(200), unique[1].NaturalKey)
}
