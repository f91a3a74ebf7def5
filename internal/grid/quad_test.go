package grid

import "testing"

func TestQuadrantFor(t *testing.T) {
	cases := []struct {
		dx, dy int
		want   Quadrant
	}{
		{1, -1, QuadNE},
		{-1, -1, QuadNW},
		{1, 1, QuadSE},
		{-1, 1, QuadSW},
		// Zero components lean east/south.
		{0, -1, QuadNE},
		{0, 1, QuadSE},
		{1, 0, QuadSE},
		{-1, 0, QuadSW},
		{0, 0, QuadSE},
	}
	for _, c := range cases {
		if got := QuadrantFor(c.dx, c.dy); got != c.want {
			t.Errorf("QuadrantFor(%d, %d) = %v, want %v", c.dx, c.dy, got, c.want)
		}
	}
}

func TestQuadrantOpposite(t *testing.T) {
	pairs := map[Quadrant]Quadrant{
		QuadNE: QuadSW,
		QuadNW: QuadSE,
		QuadSE: QuadNW,
		QuadSW: QuadNE,
	}
	for q, want := range pairs {
		if got := q.Opposite(); got != want {
			t.Errorf("%v.Opposite() = %v, want %v", q, got, want)
		}
	}
}

func TestQuadAccumulateIsMax(t *testing.T) {
	var q Quad
	q.Accumulate(QuadNE, 5)
	q.Accumulate(QuadNE, 3)
	if q.Get(QuadNE) != 5 {
		t.Errorf("expected 5, got %v", q.Get(QuadNE))
	}
	q.Accumulate(QuadNE, 8)
	if q.Get(QuadNE) != 8 {
		t.Errorf("expected 8, got %v", q.Get(QuadNE))
	}
	if q.Get(QuadSW) != 0 {
		t.Errorf("other quadrants must stay untouched, got %v", q.Get(QuadSW))
	}
}

func TestQuadAccumulateAllAndMax(t *testing.T) {
	var q Quad
	q.Accumulate(QuadNW, 12)
	q.AccumulateAll(7)
	if q.Get(QuadNW) != 12 {
		t.Errorf("AccumulateAll must not lower an existing value, got %v", q.Get(QuadNW))
	}
	if q.Get(QuadSE) != 7 {
		t.Errorf("expected 7, got %v", q.Get(QuadSE))
	}
	if q.Max() != 12 {
		t.Errorf("expected max 12, got %v", q.Max())
	}
}
