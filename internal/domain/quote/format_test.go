package quote

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMoneyFormat(t *testing.T) {
	m := Money{Symbol: "$"}
	cases := []struct {
		in       string
		expected string
	}{
		{"1234.5", "$ 1.234,50"},
		{"0", "$ 0,00"},
		{"1000000", "$ 1.000.000,00"},
		{"999.999", "$ 1.000,00"},
		{"12.345", "$ 12,35"},
		{"100", "$ 100,00"},
		{"-1", "-$ 1,00"},
		{"-0.004", "$ 0,00"},
		{"-0.005", "-$ 0,01"},
	}
	for _, tc := range cases {
		got := m.Format(decimal.RequireFromString(tc.in))
		if got != tc.expected {
			t.Fatalf("Format(%s) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}

func TestMoneyFormat_NoSymbol(t *testing.T) {
	if got := (Money{}).Format(decimal.NewFromInt(1500)); got != "1.500,00" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(d); got != "01/03/2024" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDate_UsesUTCDay(t *testing.T) {
	utc := time.Date(2024, time.March, 1, 1, 0, 0, 0, time.UTC)
	cases := []time.Time{
		utc,
		utc.In(time.FixedZone("CLT", -3*60*60)),
		utc.In(time.FixedZone("JST", 9*60*60)),
	}
	for _, d := range cases {
		if got := FormatDate(d); got != "01/03/2024" {
			t.Fatalf("FormatDate(%s) = %q, want 01/03/2024", d, got)
		}
	}
}

func TestPercent(t *testing.T) {
	cases := map[string]string{"0.19": "19%", "0.125": "12.5%", "0": "0%"}
	for in, want := range cases {
		if got := percent(decimal.RequireFromString(in)); got != want {
			t.Fatalf("percent(%s) = %q, want %q", in, got, want)
		}
	}
}
