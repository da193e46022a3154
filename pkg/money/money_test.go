package money

import "testing"

func TestFormatMinor(t *testing.T) {
	cases := []struct {
		amount   int64
		currency string
		want     string
	}{
		{0, "MXN", "0.00"},
		{5, "usd", "0.05"},
		{123456, "MXN", "1234.56"},
		{-250, "MXN", "-2.50"},
		{1500, "JPY", "1500"},
	}
	for _, tc := range cases {
		if got := FormatMinor(tc.amount, tc.currency); got != tc.want {
			t.Fatalf("FormatMinor(%d, %s) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(21000, "mxn"); got != "210.00 MXN" {
		t.Fatalf("unexpected display %q", got)
	}
}
