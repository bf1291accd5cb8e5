//-------------------------------------------------------------------------
//
// pgEdge Retail Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
}

func TestFakerTaxIDs(t *testing.T) {
	f := NewFaker()

	cpf := regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	cnpj := regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
	for i := 0; i < 20; i++ {
		if s := f.CPF(); !cpf.MatchString(s) {
			t.Errorf("CPF has unexpected format: %s", s)
		}
		if s := f.CNPJ(); !cnpj.MatchString(s) {
			t.Errorf("CNPJ has unexpected format: %s", s)
		}
	}
}

func TestFakerPhone(t *testing.T) {
	f := NewFaker()
	phone := regexp.MustCompile(`^\(\d{2}\) 9\d{4}-\d{4}$`)
	for i := 0; i < 20; i++ {
		if s := f.Phone(); !phone.MatchString(s) {
			t.Errorf("Phone has unexpected format: %s", s)
		}
	}
}

func TestFakerBarcode(t *testing.T) {
	f := NewFaker()
	b := f.Barcode()
	if len(b) != 13 || b[:3] != "789" {
		t.Errorf("Barcode should be 13 digits starting with 789, got: %s", b)
	}
}

func TestFakerAddressParts(t *testing.T) {
	f := NewFaker()
	if s := f.State(); len(s) != 2 {
		t.Errorf("State should be a two-letter code, got: %s", s)
	}
	if f.City() == "" {
		t.Error("City returned empty string")
	}
	if f.Neighborhood() == "" {
		t.Error("Neighborhood returned empty string")
	}
	if f.Street() == "" {
		t.Error("Street returned empty string")
	}
}

func TestFakerMoney(t *testing.T) {
	f := NewFaker()
	lo, hi := decimal.NewFromInt(1), decimal.NewFromInt(80)
	for i := 0; i < 50; i++ {
		m := f.Money(1, 80)
		if m.LessThan(lo) || m.GreaterThan(hi) {
			t.Errorf("Money %s not in range [1, 80]", m)
		}
		if m.Exponent() < -2 {
			t.Errorf("Money %s has more than two decimal places", m)
		}
	}
}

func TestCommaDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.9", "12,90"},
		{"1234.5", "1234,50"},
		{"3", "3,00"},
	}
	for _, tt := range tests {
		if got := CommaDecimal(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("CommaDecimal(%s) = %s, expected %s", tt.in, got, tt.want)
		}
	}
}

func TestFakerChance(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 10; i++ {
		if f.Chance(0) {
			t.Error("Chance(0) should never be true")
		}
		if !f.Chance(1.01) {
			t.Error("Chance above 1 should always be true")
		}
	}
}

func TestFakerInt(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Int(10, 20)
		if v < 10 || v > 20 {
			t.Errorf("Int(10, 20) returned %d", v)
		}
	}
}

func TestFakerDateRange(t *testing.T) {
	f := NewFaker()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	d := f.DateRange(start, end)
	if d.Before(start) || d.After(end) {
		t.Errorf("Date %v not in range [%v, %v]", d, start, end)
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}

	for i := 0; i < 100; i++ {
		chosen := Choose(f, items)
		found := false
		for _, item := range items {
			if item == chosen {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Choose returned item not in slice: %s", chosen)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []string

	chosen := Choose(f, items)
	if chosen != "" {
		t.Errorf("Choose on empty slice should return zero value, got: %s", chosen)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c"}
	weights := []int{1, 2, 7} // c should be chosen ~70% of the time

	counts := make(map[string]int)
	iterations := 1000

	for i := 0; i < iterations; i++ {
		chosen := ChooseWeighted(f, items, weights)
		counts[chosen]++
	}

	// c should be most common
	if counts["c"] < counts["a"] || counts["c"] < counts["b"] {
		t.Errorf("Weighted choice distribution unexpected: %v", counts)
	}
}

func TestFakerDigits(t *testing.T) {
	f := NewFaker()
	s := f.Digits(8)
	if len(s) != 8 {
		t.Errorf("Digits(8) should return 8 chars, got %d", len(s))
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			t.Errorf("Digits should only contain digits, got: %c", c)
		}
	}
}

// Benchmarks
func BenchmarkFakerCPF(b *testing.B) {
	f := NewFaker()
	for i := 0; i < b.N; i++ {
		f.CPF()
	}
}

func BenchmarkChoose(b *testing.B) {
	f := NewFaker()
	items := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < b.N; i++ {
		Choose(f, items)
	}
}
