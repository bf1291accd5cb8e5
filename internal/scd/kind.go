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
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the value type of an attribute column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindNumeric
	KindDate
	KindBoolean
)

func (k Kind) valid() bool {
	return k >= KindText && k <= KindBoolean
}

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SQLType returns the PostgreSQL column type used for the kind.
func (k Kind) SQLType() string {
	switch k {
	case KindInteger:
		return "BIGINT"
	case KindNumeric:
		return "NUMERIC(12,2)"
	case KindDate:
		return "DATE"
	case KindBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// Normalize converts v to the canonical Go type of the kind: string, int64,
// decimal.Decimal, time.Time (UTC midnight) or bool. NULL text becomes the
// empty string; NULL in any other kind is an error.
func (k Kind) Normalize(v any) (any, error) {
	if valuer, ok := v.(driver.Valuer); ok {
		if _, isDecimal := v.(decimal.Decimal); !isDecimal {
			dv, err := valuer.Value()
			if err != nil {
				return nil, err
			}
			v = dv
		}
	}

	switch k {
	case KindText:
		return normalizeText(v)
	case KindInteger:
		return normalizeInteger(v)
	case KindNumeric:
		return normalizeNumeric(v)
	case KindDate:
		return normalizeDate(v)
	case KindBoolean:
		return normalizeBoolean(v)
	}
	return nil, fmt.Errorf("unknown kind %d", int(k))
}

// Equal compares two values after normalization. Values that fail to
// normalize are never equal.
func (k Kind) Equal(a, b any) bool {
	na, err := k.Normalize(a)
	if err != nil {
		return false
	}
	nb, err := k.Normalize(b)
	if err != nil {
		return false
	}
	switch k {
	case KindNumeric:
		return na.(decimal.Decimal).Equal(nb.(decimal.Decimal))
	case KindDate:
		return na.(time.Time).Equal(nb.(time.Time))
	default:
		return na == nb
	}
}

func normalizeText(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	case int64, int32, int, float64:
		return fmt.Sprint(t), nil
	}
	return nil, fmt.Errorf("cannot use %T as text", v)
}

func normalizeInteger(v any) (any, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) {
			return nil, fmt.Errorf("%v is not an integer", t)
		}
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", t)
		}
		return n, nil
	case nil:
		return nil, fmt.Errorf("integer value is NULL")
	}
	return nil, fmt.Errorf("cannot use %T as integer", v)
}

func normalizeNumeric(v any) (any, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case string:
		return ParseDecimal(t)
	case nil:
		return nil, fmt.Errorf("numeric value is NULL")
	}
	return nil, fmt.Errorf("cannot use %T as numeric", v)
}

// ParseDecimal parses a numeric string, accepting a comma as the decimal
// separator.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid numeric %q", s)
	}
	return d, nil
}

func normalizeDate(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return DateOf(t), nil
	case string:
		s := strings.TrimSpace(t)
		if len(s) > 10 {
			s = s[:10]
		}
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", t)
		}
		return d, nil
	case nil:
		return nil, fmt.Errorf("date value is NULL")
	}
	return nil, fmt.Errorf("cannot use %T as date", v)
}

func normalizeBoolean(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case int64:
		return t != 0, nil
	case int:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "t", "true", "s", "sim", "y", "yes":
			return true, nil
		case "0", "f", "false", "n", "nao", "não", "no", "":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", t)
	case nil:
		return false, nil
	}
	return nil, fmt.Errorf("cannot use %T as boolean", v)
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
