package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{"1.005", 1.01, true}, // half-up rounding
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, out float64 }{
		{1.005, 1.01},
		{1.004, 1.0},
		{373.3333333, 373.33},
		{-2.345, -2.35},
		{0, 0},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.out {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}
