package core

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"-4.50", "-4.5", true},
		{"1200", "1200", true},
		{"1,23", "", false},
		{"1,000", "", false},
		{"1e3", "1000", true},
		{" 2.50 ", "2.5", true},
		{"+3", "3", true},
		{"0", "0", true},
		{"0e2000000000", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"1" + strings.Repeat("0", 70), "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCheckAmount(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"-4.50", true},
		{"1300", true},
		{"0.01", true},
		{"1.500", true},
		{"9999999999.99", true},
		{"-9999999999.99", true},
		{"0.001", false},
		{"10000000000", false},
		{"-10000000000", false},
		{"1e20000000", false},
		{"-1e20000000", false},
		{"1e-20000000", false},
		{"0e20000000", true},
		{"1.50000000000000", true},
		{"1.500000000000000000", false},
	}
	for _, tc := range cases {
		err := CheckAmount(decimal.RequireFromString(tc.in))
		if tc.ok && err != nil {
			t.Fatalf("%s expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s expected error", tc.in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"-4.5":  "-4.50",
		"1200":  "1200.00",
		"0":     "0.00",
		"12.34": "12.34",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatAmount(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestCheckAmountHugeExponentIsFast(t *testing.T) {
	for _, in := range []string{"1e2147483647", "1e-2147483647", "9e20000000"} {
		d, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%s): %v", in, err)
		}
		start := time.Now()
		if err := CheckAmount(d); err == nil {
			t.Fatalf("%s expected error", in)
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Fatalf("CheckAmount(%s) took %v", in, elapsed)
		}
	}
}
