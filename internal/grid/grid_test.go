package grid

import (
	"errors"
	"testing"
)

func TestNewRejectsInvalidDimensions(t *testing.T) {
	if _, err := New[int](0, 5); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions for zero width, got %v", err)
	}
	if _, err := New[int](5, -1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions for negative height, got %v", err)
	}
}

func TestAtSetRoundTrip(t *testing.T) {
	g := MustNew[int](4, 3)
	if err := g.Set(2, 1, 42); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := g.At(2, 1)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
}

func TestOutOfBoundsAccess(t *testing.T) {
	g := MustNew[float64](4, 3)
	cases := []struct{ x, y int }{
		{-1, 0}, {0, -1}, {4, 0}, {0, 3},
	}
	for _, c := range cases {
		if _, err := g.At(c.x, c.y); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("At(%d, %d): expected ErrOutOfBounds, got %v", c.x, c.y, err)
		}
		if err := g.Set(c.x, c.y, 1.0); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%d, %d): expected ErrOutOfBounds, got %v", c.x, c.y, err)
		}
		if g.InBounds(c.x, c.y) {
			t.Errorf("InBounds(%d, %d) should be false", c.x, c.y)
		}
	}
}

func TestFill(t *testing.T) {
	g := MustNew[int](3, 3)
	g.Fill(7)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if g.AtUnchecked(x, y) != 7 {
				t.Fatalf("cell (%d, %d) not filled", x, y)
			}
		}
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	g := MustNew[int](4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			g.SetUnchecked(x, y, y*10+x)
		}
	}

	if err := g.Resize(6, 2); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if w, h := g.Width(), g.Height(); w != 6 || h != 2 {
		t.Fatalf("expected 6x2, got %dx%d", w, h)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if got := g.AtUnchecked(x, y); got != y*10+x {
				t.Errorf("cell (%d, %d): expected %d, got %d", x, y, y*10+x, got)
			}
		}
	}
	// New cells are zero.
	if g.AtUnchecked(5, 1) != 0 {
		t.Error("new cell should be zero")
	}

	if err := g.Resize(0, 2); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
}
