package grid

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when coordinates fall outside the allocated region.
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// ErrInvalidDimensions is returned for non-positive region dimensions.
var ErrInvalidDimensions = errors.New("invalid grid dimensions")

// Point is a 2D tile coordinate.
type Point struct {
	X, Y int
}

// Tripoint is a 3D tile coordinate; Z is a level offset.
type Tripoint struct {
	X, Y, Z int
}

// Grid is a bounds-checked 2D buffer backed by a flat slice for cache
// locality. Raw offsets never leave this package.
type Grid[T any] struct {
	width  int
	height int
	cells  []T
}

// New allocates a grid of the given dimensions.
func New[T any](width, height int) (*Grid[T], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid[T]{
		width:  width,
		height: height,
		cells:  make([]T, width*height),
	}, nil
}

// MustNew allocates a grid and panics on invalid dimensions. Intended for
// tests and for callers that have already validated configuration.
func MustNew[T any](width, height int) *Grid[T] {
	g, err := New[T](width, height)
	if err != nil {
		panic(err)
	}
	return g
}

// Width returns the region width.
func (g *Grid[T]) Width() int { return g.width }

// Height returns the region height.
func (g *Grid[T]) Height() int { return g.height }

// InBounds reports whether (x, y) falls inside the region.
func (g *Grid[T]) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid[T]) idx(x, y int) int {
	return y*g.width + x
}

// At returns the cell value, or ErrOutOfBounds outside the region.
func (g *Grid[T]) At(x, y int) (T, error) {
	if !g.InBounds(x, y) {
		var zero T
		return zero, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	return g.cells[g.idx(x, y)], nil
}

// Set stores a cell value, or returns ErrOutOfBounds outside the region.
func (g *Grid[T]) Set(x, y int, v T) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfBounds, x, y, g.width, g.height)
	}
	g.cells[g.idx(x, y)] = v
	return nil
}

// AtUnchecked reads a cell without bounds checking. The inner sweep loops
// use it after clipping their scan ranges; callers outside this repository
// go through At.
func (g *Grid[T]) AtUnchecked(x, y int) T {
	return g.cells[g.idx(x, y)]
}

// SetUnchecked writes a cell without bounds checking.
func (g *Grid[T]) SetUnchecked(x, y int, v T) {
	g.cells[g.idx(x, y)] = v
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// Resize reallocates the grid to new dimensions, preserving cells whose
// coordinates remain valid. Cells gained by growth hold the zero value.
func (g *Grid[T]) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width == g.width && height == g.height {
		return nil
	}
	cells := make([]T, width*height)
	copyW := g.width
	if width < copyW {
		copyW = width
	}
	copyH := g.height
	if height < copyH {
		copyH = height
	}
	for y := 0; y < copyH; y++ {
		copy(cells[y*width:y*width+copyW], g.cells[y*g.width:y*g.width+copyW])
	}
	g.width = width
	g.height = height
	g.cells = cells
	return nil
}
