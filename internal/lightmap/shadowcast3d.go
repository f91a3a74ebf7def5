package lightmap

import (
	"duskgrid/internal/grid"
	"duskgrid/internal/mathutil"
)

// levelGrids exposes the per-level input grids the 3D sweep reads.
type levelGrids struct {
	transparency *grid.Grid[float64]
	floor        *grid.Grid[bool]
	diag         *grid.Grid[DiagFlags] // may be nil
}

// merge3DFunc receives each visited tile with the intensity that reached it
// and the quadrant it arrived through.
type merge3DFunc func(x, y, z int, intensity float64, q grid.Quadrant)

// caster3d sweeps one octant of one vertical hemisphere. The distance axis
// is the octant's major horizontal axis; the horizontal minor axis and the
// vertical axis are clipped by independent angular windows.
//
// The vertical (major) windows of the z-blocks inside one distance shell
// partition the sweep at tile-boundary slopes, so sibling recursions never
// overlap and total work stays proportional to the tiles visited.
type caster3d struct {
	levels    []levelGrids
	origin    grid.Tripoint
	zz        int // +1 sweeps upward, -1 downward
	radius    int
	st        Strategy
	tables    *Tables
	numerator float64
	merge     merge3DFunc
	t         octantTransform
	quad      grid.Quadrant
}

// castAllOctants3D sweeps the full sphere around origin across all loaded
// levels. The vertical column directly above and below the origin falls
// outside every octant and is handled by the caller.
func castAllOctants3D(levels []levelGrids, origin grid.Tripoint, radius int,
	st Strategy, tables *Tables, numerator float64, merge merge3DFunc) {
	for _, t := range octantTransforms {
		for _, zz := range [2]int{1, -1} {
			c := caster3d{
				levels:    levels,
				origin:    origin,
				zz:        zz,
				radius:    radius,
				st:        st,
				tables:    tables,
				numerator: numerator,
				merge:     merge,
				t:         t,
				// The 3D sweep runs positive deltas, mirroring the world
				// direction relative to the 2D sweep's negative deltas.
				quad: t.quad.Opposite(),
			}
			c.castSegment(1, 0.0, 1.0, 0.0, 1.0, TransparencyOpenAir)
		}
	}
}

// castSegment processes one distance shell inside the given angular windows
// and recurses outward per z-block. Vertical slopes run 0 (level) to 1
// (45 degrees); horizontal minor slopes run 0 (on-axis) to 1 (diagonal).
func (c *caster3d) castSegment(distance int, startMajor, endMajor, startMinor, endMinor, cumulative float64) {
	if startMajor >= endMajor || startMinor > endMinor || distance > c.radius {
		return
	}
	dy := distance

	// Both hemispheres sweep the dz == 0 plane: its spans seed the shallow
	// angular windows of every deeper shell. Merges there are duplicated
	// between hemispheres, which max accumulation absorbs.
	for dz := 0; dz <= distance; dz++ {
		z := c.origin.Z + dz*c.zz
		if z < 0 || z >= len(c.levels) {
			break
		}

		// Partition the vertical window at tile-boundary slopes.
		blockLo := (float64(dz) - 0.5) / (float64(dy) + 0.5)
		blockHi := (float64(dz) + 0.5) / (float64(dy) + 0.5)
		if blockLo > endMajor {
			break
		}
		if blockHi < startMajor {
			continue
		}
		if blockLo < startMajor {
			blockLo = startMajor
		}
		if blockHi > endMajor {
			blockHi = endMajor
		}

		if !c.castBlock(distance, dz, z, blockLo, blockHi, startMinor, endMinor, cumulative) {
			return
		}
	}
}

// castBlock scans the horizontal run of one z-block, splitting the span on
// transparency or floor changes. It returns false when the whole segment
// must abort (a diagonally blocked corner).
func (c *caster3d) castBlock(distance, dz, z int, majorLo, majorHi, startMinor, endMinor, cumulative float64) bool {
	dy := distance
	lvl := c.levels[z]
	minorStart := startMinor
	started := false
	var curTr float64
	var curFloor bool
	var lastIntensity float64

	for dx := 0; dx <= distance; dx++ {
		trailingMinor := (float64(dx) - 0.5) / (float64(dy) + 0.5)
		leadingMinor := (float64(dx) + 0.5) / (float64(dy) - 0.5)

		x := c.origin.X + dx*c.t.xx + dy*c.t.xy
		y := c.origin.Y + dx*c.t.yx + dy*c.t.yy
		if !lvl.transparency.InBounds(x, y) || leadingMinor < minorStart {
			continue
		}
		if trailingMinor > endMinor {
			break
		}

		// A 3D diagonal block is an impassable structural edge: the whole
		// segment aborts rather than just skipping the tile.
		if dx == distance && c.cornerBlocked(lvl, dx, dy, x, y) {
			return false
		}

		tr := lvl.transparency.AtUnchecked(x, y)
		fl := c.floorBlocked(x, y, z, dz)
		if !started {
			started = true
			curTr = tr
			curFloor = fl
		}

		// dz <= distance, so the Chebyshev distance is the shell distance.
		lastIntensity = c.tables.Calc(c.st, c.numerator, cumulative, distance)
		if !fl {
			c.merge(x, y, z, lastIntensity, c.quad)
		}

		if tr == curTr && fl == curFloor {
			continue
		}

		// A floor difference splits exactly like a transparency change:
		// floors occlude between levels independently of terrain opacity.
		if c.st.Check(curTr, lastIntensity) && !curFloor {
			c.castSegment(distance+1, majorLo, majorHi, minorStart, trailingMinor,
				c.st.Accumulate(cumulative, curTr, distance))
		}
		if !c.st.Check(tr, lastIntensity) || fl {
			minorStart = leadingMinor
		} else {
			minorStart = trailingMinor
		}
		if minorStart > endMinor {
			return true
		}
		curTr = tr
		curFloor = fl
	}

	if started && !curFloor && c.st.Check(curTr, lastIntensity) && minorStart <= endMinor {
		c.castSegment(distance+1, majorLo, majorHi, minorStart, endMinor,
			c.st.Accumulate(cumulative, curTr, distance))
	}
	return true
}

// floorBlocked reports whether entering the tile at (x, y) on level z would
// cross a solid floor. The boundary between level z-1 and level z at a
// column is blocked exactly when level z has a floor there; which side
// initiates the crossing follows from the sweep direction.
func (c *caster3d) floorBlocked(x, y, z, dz int) bool {
	if dz == 0 {
		return false
	}
	if c.zz > 0 {
		// Upward: the entered level's own floor separates it from below.
		return c.hasFloor(z, x, y)
	}
	// Downward: the floor of the level above the target is crossed.
	return c.hasFloor(z+1, x, y)
}

func (c *caster3d) hasFloor(z, x, y int) bool {
	if z < 0 || z >= len(c.levels) {
		return false
	}
	fl := c.levels[z].floor
	if fl == nil || !fl.InBounds(x, y) {
		return false
	}
	return fl.AtUnchecked(x, y)
}

func (c *caster3d) cornerBlocked(lvl levelGrids, dx, dy, x, y int) bool {
	if lvl.diag == nil || dx != dy || dx == 0 {
		return false
	}
	px := c.origin.X + (dx-1)*c.t.xx + (dy-1)*c.t.xy
	py := c.origin.Y + (dx-1)*c.t.yx + (dy-1)*c.t.yy
	return diagonalStepBlocked(lvl.diag, px, py, mathutil.IntSign(x-px), mathutil.IntSign(y-py))
}
