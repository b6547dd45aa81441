package util

import (
	"math"
	"testing"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1.234, 1.23},
		{1.235, 1.24},
		{-1.235, -1.24},
		{100, 100},
		{0.005, 0.01},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Fatalf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRound2NonFinite(t *testing.T) {
	if !math.IsInf(Round2(math.Inf(1)), 1) {
		t.Fatalf("expected +Inf passthrough")
	}
	if !math.IsNaN(Round2(math.NaN())) {
		t.Fatalf("expected NaN passthrough")
	}
	if IsFinite(math.NaN()) || !IsFinite(1) {
		t.Fatalf("IsFinite mismatch")
	}
}
