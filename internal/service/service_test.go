package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestGenerateNumberFormat(t *testing.T) {
	now := time.Date(2025, 10, 20, 9, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^INV-20251020-\d{4}$`)
	for i := 0; i < 50; i++ {
		n := GenerateNumber("INV", now)
		if !pattern.MatchString(n) {
			t.Fatalf("GenerateNumber = %q", n)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.Zero, "Rp 0"},
		{decimal.NewFromInt(500), "Rp 500"},
		{decimal.NewFromInt(5000), "Rp 5.000"},
		{decimal.NewFromInt(5000000), "Rp 5.000.000"},
		{decimal.NewFromInt(1234567890), "Rp 1.234.567.890"},
		{decimal.NewFromInt(-75000), "-Rp 75.000"},
		{decimal.NewFromFloat(1500.75), "Rp 1.501"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(tc.in); got != tc.want {
			t.Errorf("FormatRupiah(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
