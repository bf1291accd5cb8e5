//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package scd

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reserved surrogate keys. Every dimension carries one row for each.
const (
	KeyNotInformed   int64 = -1
	KeyNotApplicable int64 = -2
	KeyUnknown       int64 = -3
)

// SentinelKeys lists the reserved keys in table order.
var SentinelKeys = []int64{KeyNotInformed, KeyNotApplicable, KeyUnknown}

// IsSentinelKey reports whether key is reserved for a placeholder row.
func IsSentinelKey(key int64) bool {
	return key <= 0
}

// Placeholders holds the text written into sentinel rows.
type Placeholders struct {
	NotInformed   string
	NotApplicable string
	Unknown       string
}

// DefaultPlaceholders returns the standard labels.
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		NotInformed:   "Não informado",
		NotApplicable: "Não aplicável",
		Unknown:       "Desconhecido",
	}
}

// Label returns the placeholder text for a sentinel key.
func (p Placeholders) Label(key int64) string {
	switch key {
	case KeyNotInformed:
		return p.NotInformed
	case KeyNotApplicable:
		return p.NotApplicable
	default:
		return p.Unknown
	}
}

// Sentinels builds the three placeholder rows for shape. Text attributes take
// the label, numeric attributes take the key itself, dates take the epoch and
// booleans are false. Versioned sentinels are active from the epoch onwards.
func Sentinels(shape *Shape, p Placeholders, epoch time.Time) []Version {
	rows := make([]Version, 0, len(SentinelKeys))
	for _, key := range SentinelKeys {
		values := make([]any, len(shape.Columns))
		for i, col := range shape.Columns {
			values[i] = placeholderValue(col.Kind, key, p.Label(key), epoch)
		}
		rows = append(rows, Version{
			SurrogateKey: key,
			NaturalKey:   key,
			Values:       values,
			ValidFrom:    epoch,
			Active:       true,
		})
	}
	return rows
}

func placeholderValue(kind Kind, key int64, label string, epoch time.Time) any {
	switch kind {
	case KindInteger:
		return key
	case KindNumeric:
		return decimal.NewFromInt(key)
	case KindDate:
		return DateOf(epoch)
	case KindBoolean:
		return false
	default:
		return label
	}
}
