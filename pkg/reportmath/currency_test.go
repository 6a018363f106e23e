package reportmath

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatSAR(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"0", "٠٫٠٠ ر.س."},
		{"1000", "١٬٠٠٠٫٠٠ ر.س."},
		{"1234.56", "١٬٢٣٤٫٥٦ ر.س."},
		{"1234567.8", "١٬٢٣٤٬٥٦٧٫٨٠ ر.س."},
		{"-42.5", "-٤٢٫٥٠ ر.س."},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("bad test amount %q: %v", tc.in, err)
		}
		if got := FormatSAR(d); got != tc.expected {
			t.Errorf("FormatSAR(%s)=%q want %q", tc.in, got, tc.expected)
		}
	}
}

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tenDaysAgo := now.AddDate(0, 0, -10)
	tomorrow := now.AddDate(0, 0, 1)

	if got := DaysOverdue(nil, now); got != 0 {
		t.Errorf("nil last payment: got %d want 0", got)
	}
	if got := DaysOverdue(&tenDaysAgo, now); got != 10 {
		t.Errorf("ten days ago: got %d want 10", got)
	}
	if got := DaysOverdue(&tomorrow, now); got != 0 {
		t.Errorf("future payment: got %d want 0", got)
	}
}

func TestPercentZeroDenominator(t *testing.T) {
	if got := Percent(decimal.NewFromInt(50), decimal.Zero); !got.IsZero() {
		t.Errorf("Percent with zero whole: got %s want 0", got)
	}
	got := Percent(decimal.NewFromInt(1), decimal.NewFromInt(3))
	if got.String() != "33.33" {
		t.Errorf("Percent(1,3)=%s want 33.33", got)
	}
	if got := RatePercent(3, 0); !got.IsZero() {
		t.Errorf("RatePercent with zero denominator: got %s want 0", got)
	}
	if got := RatePercent(3, 4); got.String() != "75" {
		t.Errorf("RatePercent(3,4)=%s want 75", got)
	}
}

func TestGrowthPercent(t *testing.T) {
	cases := []struct {
		current, previous, want string
	}{
		{"150", "100", "50"},
		{"50", "100", "-50"},
		{"100", "0", "100"}, // growth from zero reports 100, not an error
		{"0", "0", "100"},
	}
	for _, tc := range cases {
		cur, _ := decimal.NewFromString(tc.current)
		prev, _ := decimal.NewFromString(tc.previous)
		if got := GrowthPercent(cur, prev); got.String() != tc.want {
			t.Errorf("GrowthPercent(%s,%s)=%s want %s", tc.current, tc.previous, got, tc.want)
		}
	}
}
