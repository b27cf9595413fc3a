package pricing

import (
	"math"
	"strings"
	"testing"
)

// Pins the estimator arithmetic exactly: integer division by four.
func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abcd", 1},
		{"abcdefg", 1},
		{"abcdefgh", 2},
		{strings.Repeat("x", 100), 25},
		{strings.Repeat("x", 103), 25},
		// Characters, not bytes: 8 two-byte runes are 2 tokens, not 4.
		{strings.Repeat("é", 8), 2},
		{"отчёт о безопасности", 5},
	}
	for _, c := range cases {
		if got := EstimateTokens(c.text); got != c.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(c.text), got, c.want)
		}
	}
}

func TestEstimateCost(t *testing.T) {
	const eps = 1e-12

	if got := EstimateCost(1_000_000, 0.21); math.Abs(got-0.21) > eps {
		t.Errorf("1M tokens at 0.21/M = %v, want 0.21", got)
	}
	if got := EstimateCost(0, 0.21); got != 0 {
		t.Errorf("0 tokens should cost 0, got %v", got)
	}
	if got := EstimateCost(3000, 0.21); math.Abs(got-0.00063) > eps {
		t.Errorf("3000 tokens at 0.21/M = %v, want 0.00063", got)
	}
}
