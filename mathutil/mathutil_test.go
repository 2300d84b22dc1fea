package mathutil

import (
	"math"
	"testing"
)

func TestApproximateLog10SumLog10Commutative(t *testing.T) {
	cases := [][2]float64{{-1.0, -2.0}, {-0.5, -10.0}, {0.0, -0.001}, {-5.5, -5.5}}
	for _, c := range cases {
		a, b := c[0], c[1]
		got := ApproximateLog10SumLog10(a, b)
		want := ApproximateLog10SumLog10(b, a)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("f(%v,%v)=%v != f(%v,%v)=%v", a, b, got, b, a, want)
		}
	}
}

func TestApproximateLog10SumLog10NegInf(t *testing.T) {
	got := ApproximateLog10SumLog10(math.Inf(-1), -3.0)
	if got != -3.0 {
		t.Errorf("got %v, want -3.0", got)
	}
}

func TestApproximateLog10SumLog10Accuracy(t *testing.T) {
	a, b := -1.0, -2.0
	got := ApproximateLog10SumLog10(a, b)
	want := math.Log10(math.Pow(10, a) + math.Pow(10, b))
	if math.Abs(got-want) > 1e-3 {
		t.Errorf("got %v, want ~%v", got, want)
	}
}

func TestGenotypesForOrdering(t *testing.T) {
	pairs := GenotypesFor(3)
	want := []GenotypePair{{0, 0}, {0, 1}, {1, 1}, {0, 2}, {1, 2}, {2, 2}}
	if len(pairs) != len(want) {
		t.Fatalf("len = %d, want %d", len(pairs), len(want))
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pairs[%d] = %v, want %v", i, pairs[i], want[i])
		}
	}
}
