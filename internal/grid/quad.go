package grid

// Quadrant identifies one of the four diagonal directions light can arrive
// from. An opaque tile can be lit on one side and dark on the other, so
// light values are tracked per quadrant.
type Quadrant int

const (
	QuadNE Quadrant = iota
	QuadNW
	QuadSE
	QuadSW
	quadCount
)

// QuadrantFor maps the sign of a displacement (toward the light source)
// onto a quadrant. Zero components lean east/south so that axis-aligned
// rays land in a deterministic quadrant.
func QuadrantFor(dx, dy int) Quadrant {
	if dy < 0 {
		if dx < 0 {
			return QuadNW
		}
		return QuadNE
	}
	if dx < 0 {
		return QuadSW
	}
	return QuadSE
}

// Opposite returns the diagonally opposed quadrant.
func (q Quadrant) Opposite() Quadrant {
	switch q {
	case QuadNE:
		return QuadSW
	case QuadNW:
		return QuadSE
	case QuadSE:
		return QuadNW
	default:
		return QuadNE
	}
}

// Quad holds the maximum light received through each diagonal quadrant.
type Quad struct {
	v [quadCount]float64
}

// Accumulate merges a light contribution into one quadrant. Accumulation is
// always max, never overwrite, so applying sources is commutative.
func (q *Quad) Accumulate(dir Quadrant, value float64) {
	if value > q.v[dir] {
		q.v[dir] = value
	}
}

// AccumulateAll merges a contribution into every quadrant (used for the
// tile a light source itself occupies and for ambient light).
func (q *Quad) AccumulateAll(value float64) {
	for i := range q.v {
		if value > q.v[i] {
			q.v[i] = value
		}
	}
}

// Get returns the value stored for one quadrant.
func (q *Quad) Get(dir Quadrant) float64 {
	return q.v[dir]
}

// Max returns the brightest quadrant value; this is the rendered brightness
// for transparent tiles.
func (q *Quad) Max() float64 {
	m := q.v[0]
	for _, v := range q.v[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
