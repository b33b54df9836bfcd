package risk

import (
	"math"
	"testing"
)

func TestGini(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    float64
	}{
		{"empty", nil, 0},
		{"single holder", []float64{5}, 0},
		{"perfect equality", []float64{1, 1, 1, 1}, 0},
		{"all zero", []float64{0, 0, 0}, 0},
		{"one holder owns everything", []float64{0, 0, 0, 10}, 0.75},
		{"moderate skew", []float64{1, 2, 3, 4}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Gini(tt.amounts)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Gini(%v) = %v, want %v", tt.amounts, got, tt.want)
			}
		})
	}
}

func TestGiniBounds(t *testing.T) {
	inputs := [][]float64{
		{100, 50, 25, 12, 6, 3, 1},
		{1e12, 1, 1, 1},
		{0.001, 0.002, 0.003},
	}
	for _, in := range inputs {
		g := Gini(in)
		if g < 0 || g >= 1 {
			t.Errorf("Gini(%v) = %v, out of [0,1)", in, g)
		}
	}
}

func TestGiniDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Gini(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input slice was reordered: %v", in)
	}
}
