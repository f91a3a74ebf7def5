package lightmap

import (
	"duskgrid/internal/grid"
	"duskgrid/internal/mathutil"
)

// DiagFlags records structure-occupied cut corners for a tile. DiagBlockNE
// on tile (x, y) means the corner shared with the north-east diagonal
// neighbor (x+1, y-1) is occupied; rays may not peek through it.
type DiagFlags uint8

const (
	DiagBlockNE DiagFlags = 1 << iota
	DiagBlockNW
)

// octantTransform mirrors and transposes the canonical sweep into one of
// the eight octants. Sweep coordinates (dx, dy) map to world offsets via
// worldX = ox + dx*xx + dy*xy, worldY = oy + dx*yx + dy*yy.
//
// quad is the side of a swept tile that faces the origin: light cast
// through this octant arrives on that side, so it is the quadrant the
// contribution is recorded under.
type octantTransform struct {
	xx, xy, yx, yy int
	quad           grid.Quadrant
}

// Octants sharing an axis are ordered so the first to visit a boundary tile
// carries the east/south-leaning quadrant; ties then resolve the same way
// grid.QuadrantFor does.
var octantTransforms = [8]octantTransform{
	{1, 0, 0, 1, grid.QuadSE},
	{0, 1, 1, 0, grid.QuadSE},
	{0, -1, 1, 0, grid.QuadSW},
	{-1, 0, 0, 1, grid.QuadSW},
	{1, 0, 0, -1, grid.QuadNE},
	{0, 1, -1, 0, grid.QuadNE},
	{0, -1, -1, 0, grid.QuadNW},
	{-1, 0, 0, -1, grid.QuadNW},
}

// mergeFunc receives each visited tile with the intensity that reached it
// and the quadrant it arrived through. Implementations accumulate with max.
type mergeFunc func(x, y int, intensity float64, q grid.Quadrant)

// caster holds the per-cast state shared by every row of one octant sweep.
type caster struct {
	transparency *grid.Grid[float64]
	diag         *grid.Grid[DiagFlags] // may be nil
	origin       grid.Point
	radius       int
	st           Strategy
	tables       *Tables
	numerator    float64
	merge        mergeFunc
	t            octantTransform
}

// castAllOctants sweeps the full circle around origin.
func castAllOctants(transparency *grid.Grid[float64], diag *grid.Grid[DiagFlags],
	origin grid.Point, radius int, st Strategy, tables *Tables,
	numerator float64, merge mergeFunc) {
	for _, t := range octantTransforms {
		c := caster{
			transparency: transparency,
			diag:         diag,
			origin:       origin,
			radius:       radius,
			st:           st,
			tables:       tables,
			numerator:    numerator,
			merge:        merge,
			t:            t,
		}
		c.castRow(1, 1.0, 0.0, TransparencyOpenAir)
	}
}

// castRow sweeps rows outward from the origin between the angular slopes
// start and end, recursing with a narrowed span whenever the transparency
// changes mid-row. Intensity at a tile always uses the transparency
// accumulated from previous rows (the value the ray carried when entering).
func (c *caster) castRow(row int, start, end, cumulative float64) {
	if start < end {
		return
	}
	var lastIntensity float64
	for distance := row; distance <= c.radius; distance++ {
		dy := -distance
		startedRow := false
		currentTransparency := 0.0

		for dx := -distance; dx <= 0; dx++ {
			// Slopes of the tile's far and near angular edges.
			trailingEdge := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			leadingEdge := (float64(dx) + 0.5) / (float64(dy) - 0.5)

			x := c.origin.X + dx*c.t.xx + dy*c.t.xy
			y := c.origin.Y + dx*c.t.yx + dy*c.t.yy
			if !c.transparency.InBounds(x, y) || start < leadingEdge {
				continue
			}
			if end > trailingEdge {
				break
			}

			if !startedRow {
				startedRow = true
				currentTransparency = c.transparency.AtUnchecked(x, y)
			}

			lastIntensity = c.tables.Calc(c.st, c.numerator, cumulative, distance)
			if !c.cornerBlocked(dx, dy, x, y) {
				c.merge(x, y, lastIntensity, c.t.quad)
			}

			newTransparency := c.transparency.AtUnchecked(x, y)
			if newTransparency == currentTransparency {
				continue
			}

			// The transparency changed: split the span. The portion of the
			// row already scanned continues one row further out under the
			// old span; the rest of this row proceeds from the boundary.
			if c.st.Check(currentTransparency, lastIntensity) {
				c.castRow(distance+1, start, trailingEdge,
					c.st.Accumulate(cumulative, currentTransparency, distance))
			}
			// The new span pivots on the leading edge when the tile is
			// opaque and on the trailing edge when it is transparent.
			if !c.st.Check(newTransparency, lastIntensity) {
				start = leadingEdge
			} else {
				start = trailingEdge
			}
			if start < end {
				return
			}
			currentTransparency = newTransparency
		}

		if !startedRow || !c.st.Check(currentTransparency, lastIntensity) {
			return
		}
		cumulative = c.st.Accumulate(cumulative, currentTransparency, distance)
	}
}

// cornerBlocked reports whether the tile at world (x, y), reached along the
// octant diagonal, sits behind a structure-occupied cut corner. Only tiles
// on the exact diagonal (dx == dy in sweep coordinates) cross a corner.
func (c *caster) cornerBlocked(dx, dy, x, y int) bool {
	if c.diag == nil || dx != dy || dx == 0 {
		return false
	}
	// Previous tile along the diagonal, one step toward the origin.
	px := c.origin.X + (dx+1)*c.t.xx + (dy+1)*c.t.xy
	py := c.origin.Y + (dx+1)*c.t.yx + (dy+1)*c.t.yy
	return diagonalStepBlocked(c.diag, px, py, mathutil.IntSign(x-px), mathutil.IntSign(y-py))
}

// diagonalStepBlocked reports whether the diagonal step from (px, py) in
// direction (sx, sy) crosses an occupied corner. Each corner is recorded
// once, as the NE or NW bit of the tile south of it.
func diagonalStepBlocked(diag *grid.Grid[DiagFlags], px, py, sx, sy int) bool {
	var flags DiagFlags
	var ok bool
	var mask DiagFlags
	switch {
	case sx > 0 && sy < 0: // travelling NE: corner is NE of the source tile
		flags, ok = atDiag(diag, px, py)
		mask = DiagBlockNE
	case sx < 0 && sy < 0: // travelling NW
		flags, ok = atDiag(diag, px, py)
		mask = DiagBlockNW
	case sx > 0 && sy > 0: // travelling SE: corner is NW of the destination
		flags, ok = atDiag(diag, px+sx, py+sy)
		mask = DiagBlockNW
	case sx < 0 && sy > 0: // travelling SW
		flags, ok = atDiag(diag, px+sx, py+sy)
		mask = DiagBlockNE
	default:
		return false
	}
	return ok && flags&mask != 0
}

func atDiag(diag *grid.Grid[DiagFlags], x, y int) (DiagFlags, bool) {
	if !diag.InBounds(x, y) {
		return 0, false
	}
	return diag.AtUnchecked(x, y), true
}
