package assistant

import (
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"(42 * 7) / 3", 98},
		{"2 + 3 * 4", 14},
		{"-5 + 10", 5},
		{"2 ^ 10", 1024},
		{"10 % 3", 1},
		{"sqrt(81)", 9},
		{"abs(-4.5)", 4.5},
		{"round(2.6)", 3},
		{"log10(1000)", 3},
		{"cos(0)", 1},
		{"2 ^ 3 ^ 2", 512}, // right-associative
		{"((1 + 2) * (3 + 4))", 21},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.expr)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", tc.expr, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateRejectsUnsafeInput(t *testing.T) {
	cases := []string{
		"",
		"system('rm')",
		"1 +",
		"foo(3)",
		"10 ^ 100",   // exponent guard
		"2; 3",       // disallowed character
		"1 / 0 + nan", // identifiers without calls
		"(1 + 2",
	}
	for _, expr := range cases {
		if _, err := Evaluate(expr); err == nil {
			t.Fatalf("Evaluate(%q) should have failed", expr)
		}
	}
}
