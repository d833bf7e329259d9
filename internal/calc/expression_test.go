package calc

import (
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr     string
		expected float64
	}{
		{"2+3", 5},
		{"2 + 3", 5},
		{"10-4", 6},
		{"6*7", 42},
		{"8/2", 4},
		{"(2+3)*4", 20},
		{"2+3*4", 14},
		{"100/4/5", 5},
		{"10-2-3", 5},
		{"-5+8", 3},
		{"2*(3+(4-1))", 12},
		{"2.5*4", 10},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.expr, err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.expected)
			}
		})
	}
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	invalid := []string{
		"",
		"2+",
		"(2+3",
		"2+3)",
		"abc",
		"2+exec(1)",
		"os.Exit(1)",
		"1;2",
		"2^3",
	}

	for _, expr := range invalid {
		if _, err := Evaluate(expr); err == nil {
			t.Errorf("Evaluate(%q) should have failed", expr)
		}
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	if _, err := Evaluate("5/0"); err == nil {
		t.Error("expected division by zero error")
	}
}
