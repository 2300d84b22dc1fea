package interval

import "testing"

func TestOverlaps(t *testing.T) {
	cases := []struct {
		a, b Interval
		want bool
	}{
		{New("chr1", 10, 20), New("chr1", 15, 25), true},
		{New("chr1", 10, 20), New("chr1", 20, 30), false},
		{New("chr1", 10, 20), New("chr2", 10, 20), false},
		{New("chr1", 0, 5), New("chr1", 5, 10), false},
	}
	for _, c := range cases {
		if got := c.a.Overlaps(c.b); got != c.want {
			t.Errorf("%v.Overlaps(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestPadSaturatesAtZero(t *testing.T) {
	iv := New("chr1", 5, 10)
	padded := iv.Pad(20)
	if padded.Begin != 0 {
		t.Errorf("Begin = %d, want 0", padded.Begin)
	}
	if padded.End != 30 {
		t.Errorf("End = %d, want 30", padded.End)
	}
}

func TestContains(t *testing.T) {
	outer := New("chr1", 0, 100)
	inner := New("chr1", 10, 20)
	if !outer.Contains(inner) {
		t.Errorf("expected %v to contain %v", outer, inner)
	}
	if inner.Contains(outer) {
		t.Errorf("did not expect %v to contain %v", inner, outer)
	}
}

func TestSpanWith(t *testing.T) {
	a := New("chr1", 10, 20)
	b := New("chr1", 30, 40)
	got := a.SpanWith(b)
	want := New("chr1", 10, 40)
	if got != want {
		t.Errorf("SpanWith = %v, want %v", got, want)
	}
}
