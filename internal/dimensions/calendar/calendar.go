//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package calendar implements the d_data dimension, one row per sale date.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-retail-dw/internal/dimensions"
	"github.com/pgEdge/pgedge-retail-dw/internal/scd"
	"github.com/pgEdge/pgedge-retail-dw/internal/staging"
)

const (
	// Name is the registered dimension name.
	Name = "data"

	// StagingTable holds the sales whose dates populate the calendar.
	StagingTable = "stg_venda"

	// DateColumn is the sale timestamp column of StagingTable.
	DateColumn = "data_venda"
)

var weekdays = [...]string{
	time.Sunday:    "Domingo",
	time.Monday:    "Segunda-feira",
	time.Tuesday:   "Terça-feira",
	time.Wednesday: "Quarta-feira",
	time.Thursday:  "Quinta-feira",
	time.Friday:    "Sexta-feira",
	time.Saturday:  "Sábado",
}

// Calendar is the date dimension.
type Calendar struct{}

func init() {
	dimensions.Register(&Calendar{})
}

// Name returns the dimension name.
func (c *Calendar) Name() string {
	return Name
}

// Description returns a human-readable description.
func (c *Calendar) Description() string {
	return "Calendar days on which sales happened"
}

// Shape returns the d_data descriptor.
func (c *Calendar) Shape() *scd.Shape {
	return Shape()
}

// Shape returns the d_data descriptor.
func Shape() *scd.Shape {
	return &scd.Shape{
		Name:         Name,
		Table:        "d_data",
		SurrogateKey: "sk_data",
		NaturalKey:   "cd_data",
		Columns: []scd.Column{
			{Name: "dt_referencia", Kind: scd.KindDate, Policy: scd.Cosmetic},
			{Name: "nu_ano", Kind: scd.KindInteger, Policy: scd.Cosmetic},
			{Name: "nu_mes", Kind: scd.KindInteger, Policy: scd.Cosmetic},
			{Name: "nu_dia", Kind: scd.KindInteger, Policy: scd.Cosmetic},
			{Name: "nu_trimestre", Kind: scd.KindInteger, Policy: scd.Cosmetic},
			{Name: "no_dia_semana", Kind: scd.KindText, Policy: scd.Cosmetic},
			{Name: "fl_fim_semana", Kind: scd.KindBoolean, Policy: scd.Cosmetic},
		},
	}
}

// Key returns the natural key of the calendar day containing t, as
// yyyymmdd in UTC.
func Key(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	return int64(y*10000 + int(m)*100 + d)
}

// Weekday returns the Portuguese name of the day.
func Weekday(d time.Weekday) string {
	return weekdays[d]
}

// Day returns the d_data record for the day containing t.
func Day(t time.Time) scd.Record {
	d := scd.DateOf(t.UTC())
	return scd.Record{
		NaturalKey: Key(d),
		Values: []any{
			d,
			int64(d.Year()),
			int64(d.Month()),
			int64(d.Day()),
			int64((int(d.Month())-1)/3 + 1),
			Weekday(d.Weekday()),
			d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
		},
	}
}

// Extract reads the distinct sale dates of stg_venda. Timestamps falling on
// the same day collapse into one record.
func (c *Calendar) Extract(ctx context.Context, src dimensions.Source) ([]scd.Record, error) {
	rows, err := src.Reader.Read(ctx, StagingTable, staging.ReadOptions{
		Columns:  []string{DateColumn},
		Distinct: true,
		OrderBy:  []string{DateColumn},
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, rows.Len())
	records := make([]scd.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		if rows.IsNull(i, DateColumn) {
			continue
		}
		ts, err := rows.Time(i, DateColumn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StagingTable, err)
		}
		day := Day(ts)
		if seen[day.NaturalKey] {
			continue
		}
		seen[day.NaturalKey] = true
		records = append(records, day)
	}
	return records, nil
}
