package lightmap

import (
	"math"

	"duskgrid/internal/grid"
	"duskgrid/internal/mathutil"

	"go.uber.org/zap"
)

// SourceKind selects how a light source spreads.
type SourceKind int

const (
	SourcePoint SourceKind = iota
	SourceArc
)

// Source is one light emitter for the current tick.
type Source struct {
	Pos       grid.Tripoint
	Intensity float64
	Kind      SourceKind

	// Arc parameters, radians. HalfAngle is the spread to each side of
	// Bearing.
	Bearing   float64
	HalfAngle float64
}

// ApplyPointLight spreads a point source through the loaded levels,
// merging per-quadrant maxima into the light grids. Sources below the
// usable threshold are skipped entirely; zero and negative intensities are
// "no light", never an error.
func (e *Engine) ApplyPointLight(pos grid.Tripoint, intensity float64) {
	if intensity < e.cfg.Lighting.MinUsableLight {
		return
	}
	lc := e.level(pos.Z)
	if lc == nil || !lc.light.InBounds(pos.X, pos.Y) {
		e.log.Warn("point light out of bounds",
			zap.Int("x", pos.X), zap.Int("y", pos.Y), zap.Int("z", pos.Z))
		return
	}

	// The source's own tile is lit from every side.
	q := lc.light.AtUnchecked(pos.X, pos.Y)
	q.AccumulateAll(intensity)
	lc.light.SetUnchecked(pos.X, pos.Y, q)
	e.sweeps.Increment()

	st := LightStrategy(e.cfg.Lighting.MinUsableLight)
	radius := e.cfg.Vision.MaxViewDistance

	if len(e.levels) == 1 {
		castAllOctants(lc.transparency, lc.diag, grid.Point{X: pos.X, Y: pos.Y},
			radius, st, &e.tables, intensity, e.lightMerge(lc))
		return
	}

	levels := make([]levelGrids, len(e.levels))
	for i, l := range e.levels {
		levels[i] = l.grids()
	}
	castAllOctants3D(levels, pos, radius, st, &e.tables, intensity,
		func(x, y, z int, v float64, quad grid.Quadrant) {
			e.mergeLight(x, y, z, v, quad)
		})
	e.applyVerticalColumn(pos, intensity, st)
}

func (e *Engine) lightMerge(lc *levelCache) mergeFunc {
	return func(x, y int, v float64, quad grid.Quadrant) {
		q := lc.light.AtUnchecked(x, y)
		q.Accumulate(quad, v)
		lc.light.SetUnchecked(x, y, q)
	}
}

func (e *Engine) mergeLight(x, y, z int, v float64, quad grid.Quadrant) {
	lc := e.level(z)
	if lc == nil || !lc.light.InBounds(x, y) {
		return
	}
	q := lc.light.AtUnchecked(x, y)
	q.Accumulate(quad, v)
	lc.light.SetUnchecked(x, y, q)
}

// applyVerticalColumn lights the tiles straight above and below a source;
// the column falls outside every octant of the sphere sweep.
func (e *Engine) applyVerticalColumn(pos grid.Tripoint, intensity float64, st Strategy) {
	for _, dir := range [2]int{1, -1} {
		cumulative := TransparencyOpenAir
		for dz := 1; dz <= e.cfg.Vision.MaxViewDistance; dz++ {
			z := pos.Z + dz*dir
			lc := e.level(z)
			if lc == nil {
				break
			}
			var floorLevel int
			if dir > 0 {
				floorLevel = z
			} else {
				floorLevel = z + 1
			}
			if flc := e.level(floorLevel); flc != nil && flc.floor.AtUnchecked(pos.X, pos.Y) {
				break
			}
			tr := lc.transparency.AtUnchecked(pos.X, pos.Y)
			v := e.tables.Calc(st, intensity, cumulative, dz)
			if !st.Check(tr, v) {
				break
			}
			q := lc.light.AtUnchecked(pos.X, pos.Y)
			q.AccumulateAll(v)
			lc.light.SetUnchecked(pos.X, pos.Y, q)
			cumulative = st.Accumulate(cumulative, tr, dz)
		}
	}
}

// ApplyArcLight spreads a directional source across bearing +- halfAngle.
// Arcs are typically narrow, so a fan of grid-stepped rays replaces the
// full recursive sweep. The fan is dense enough to fill the swept wedge,
// not just trace its boundary.
func (e *Engine) ApplyArcLight(pos grid.Tripoint, intensity float64, bearing, halfAngle float64) {
	if intensity < e.cfg.Lighting.MinUsableLight {
		return
	}
	lc := e.level(pos.Z)
	if lc == nil || !lc.light.InBounds(pos.X, pos.Y) {
		e.log.Warn("arc light out of bounds",
			zap.Int("x", pos.X), zap.Int("y", pos.Y), zap.Int("z", pos.Z))
		return
	}
	if halfAngle <= 0 {
		return
	}
	if halfAngle >= math.Pi {
		e.ApplyPointLight(pos, intensity)
		return
	}

	q := lc.light.AtUnchecked(pos.X, pos.Y)
	q.AccumulateAll(intensity)
	lc.light.SetUnchecked(pos.X, pos.Y, q)
	e.sweeps.Increment()

	st := LightStrategy(e.cfg.Lighting.MinUsableLight)
	radius := e.cfg.Vision.MaxViewDistance

	// Every tile within the view radius subtends at least 1/radius from the
	// source; spacing the rays below that guarantees each wedge tile is
	// crossed by at least one ray.
	rays := mathutil.IntMax(e.cfg.Lighting.ArcRayCount,
		int(math.Ceil(2*halfAngle*float64(radius)*math.Sqrt2))+1)
	step := 2 * halfAngle / float64(rays-1)
	origin := grid.Point{X: pos.X, Y: pos.Y}
	for i := 0; i < rays; i++ {
		e.castLightRay(lc, origin, bearing-halfAngle+float64(i)*step, intensity, st)
	}
}

// castLightRay walks the grid tiles crossed by a ray from the origin tile's
// center toward an angle, applying light falloff until the ray leaves the
// region, passes the view radius, hits a solid tile, or decays below the
// usable floor. The walk advances one tile boundary at a time, so every
// tile the ideal ray crosses is visited.
func (e *Engine) castLightRay(lc *levelCache, origin grid.Point, angle, intensity float64, st Strategy) {
	dirX := math.Cos(angle)
	dirY := math.Sin(angle)

	deltaX, deltaY := math.Inf(1), math.Inf(1)
	if dirX != 0 {
		deltaX = math.Abs(1 / dirX)
	}
	if dirY != 0 {
		deltaY = math.Abs(1 / dirY)
	}
	stepX, stepY := 1, 1
	if dirX < 0 {
		stepX = -1
	}
	if dirY < 0 {
		stepY = -1
	}
	// Ray distance to the first x and y grid lines from the tile center.
	sideX := deltaX / 2
	sideY := deltaY / 2

	x, y := origin.X, origin.Y
	cumulative := TransparencyOpenAir
	lastDist := 0
	for {
		if sideX < sideY {
			sideX += deltaX
			x += stepX
		} else {
			sideY += deltaY
			y += stepY
		}
		if !lc.transparency.InBounds(x, y) {
			return
		}
		dist := mathutil.Chebyshev(origin.X, origin.Y, x, y)
		if dist > e.cfg.Vision.MaxViewDistance {
			return
		}
		tr := lc.transparency.AtUnchecked(x, y)
		v := e.tables.Calc(st, intensity, cumulative, dist)
		quad := grid.QuadrantFor(mathutil.IntSign(origin.X-x), mathutil.IntSign(origin.Y-y))
		q := lc.light.AtUnchecked(x, y)
		q.Accumulate(quad, v)
		lc.light.SetUnchecked(x, y, q)
		if !st.Check(tr, v) {
			return
		}
		if dist > lastDist {
			cumulative = st.Accumulate(cumulative, tr, dist)
			lastDist = dist
		}
	}
}

// AddBulkSource buffers a source strength into the level's scratch grid.
// Bulk sources (many adjacent fires, glowing fields) are flushed together
// so that sweeps dominated by a stronger neighbor are skipped.
func (e *Engine) AddBulkSource(pos grid.Tripoint, strength float64) {
	if strength <= 0 {
		return
	}
	lc := e.level(pos.Z)
	if lc == nil || !lc.bulk.InBounds(pos.X, pos.Y) {
		e.log.Warn("bulk source out of bounds",
			zap.Int("x", pos.X), zap.Int("y", pos.Y), zap.Int("z", pos.Z))
		return
	}
	if strength > lc.bulk.AtUnchecked(pos.X, pos.Y) {
		lc.bulk.SetUnchecked(pos.X, pos.Y, strength)
	}
}

// flushBulkSources sweeps the buffered sources of one level. A cell only
// sweeps when no cardinal neighbor buffered a strictly stronger value: the
// weaker sweep would be fully subsumed by the stronger neighbor's.
func (e *Engine) flushBulkSources(z int) {
	lc := e.levels[z]
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			strength := lc.bulk.AtUnchecked(x, y)
			if strength <= 0 {
				continue
			}
			if e.bulkDominated(lc, x, y, strength) {
				continue
			}
			e.ApplyPointLight(grid.Tripoint{X: x, Y: y, Z: z}, strength)
		}
	}
	lc.bulk.Fill(0)
}

func (e *Engine) bulkDominated(lc *levelCache, x, y int, strength float64) bool {
	for _, n := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		nx, ny := x+n[0], y+n[1]
		if !lc.bulk.InBounds(nx, ny) {
			continue
		}
		if lc.bulk.AtUnchecked(nx, ny) > strength {
			return true
		}
	}
	return false
}

// applyAmbient floods outdoor tiles of one level with the ambient sky
// intensity.
func (e *Engine) applyAmbient(z int, intensity float64) {
	if intensity < e.cfg.Lighting.MinUsableLight {
		return
	}
	lc := e.levels[z]
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			if !lc.outdoor.AtUnchecked(x, y) {
				continue
			}
			q := lc.light.AtUnchecked(x, y)
			q.AccumulateAll(intensity)
			lc.light.SetUnchecked(x, y, q)
		}
	}
}
