package lightmap

import (
	"math"

	"duskgrid/internal/grid"

	"go.uber.org/zap"
)

// seenNumerator scales the sight cast so that a tile at exactly the view
// radius through plain open air scores 1.0. Scores of 1.0 and above mean
// full detail; scores in (0, 1) mean the tile is discernible but hazy.
func seenNumerator(radius int) float64 {
	d := float64(radius)
	return math.Exp(TransparencyOpenAir*d) * d
}

// buildSeen recomputes the seen grids from the observer's position. Every
// level is cleared; in a single-level region the sweep stays flat, otherwise
// the full sphere is swept.
func (e *Engine) buildSeen(observer grid.Tripoint) {
	for _, lc := range e.levels {
		lc.seen.Fill(0)
	}
	lc := e.level(observer.Z)
	if lc == nil || !lc.seen.InBounds(observer.X, observer.Y) {
		e.log.Warn("observer out of bounds",
			zap.Int("x", observer.X), zap.Int("y", observer.Y), zap.Int("z", observer.Z))
		return
	}
	e.observer = observer

	numerator := seenNumerator(e.cfg.Vision.MaxViewDistance)
	lc.seen.SetUnchecked(observer.X, observer.Y, numerator)
	st := SightStrategy()
	e.sweeps.Increment()

	if len(e.levels) == 1 {
		castAllOctants(lc.transparency, lc.diag, grid.Point{X: observer.X, Y: observer.Y},
			e.cfg.Vision.MaxViewDistance, st, &e.tables, numerator,
			func(x, y int, v float64, _ grid.Quadrant) {
				if v > lc.seen.AtUnchecked(x, y) {
					lc.seen.SetUnchecked(x, y, v)
				}
			})
		return
	}

	levels := make([]levelGrids, len(e.levels))
	for i, l := range e.levels {
		levels[i] = l.grids()
	}
	castAllOctants3D(levels, observer, e.cfg.Vision.MaxViewDistance, st, &e.tables, numerator,
		func(x, y, z int, v float64, _ grid.Quadrant) {
			tlc := e.level(z)
			if tlc == nil || !tlc.seen.InBounds(x, y) {
				return
			}
			if v > tlc.seen.AtUnchecked(x, y) {
				tlc.seen.SetUnchecked(x, y, v)
			}
		})
	e.seenVerticalColumn(observer, numerator, st)
}

// seenVerticalColumn extends sight straight up and down the observer's
// column, which every octant of the sphere sweep excludes.
func (e *Engine) seenVerticalColumn(observer grid.Tripoint, numerator float64, st Strategy) {
	for _, dir := range [2]int{1, -1} {
		cumulative := TransparencyOpenAir
		for dz := 1; dz <= e.cfg.Vision.MaxViewDistance; dz++ {
			z := observer.Z + dz*dir
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
			if flc := e.level(floorLevel); flc != nil && flc.floor.AtUnchecked(observer.X, observer.Y) {
				break
			}
			tr := lc.transparency.AtUnchecked(observer.X, observer.Y)
			v := e.tables.Calc(st, numerator, cumulative, dz)
			if v > lc.seen.AtUnchecked(observer.X, observer.Y) {
				lc.seen.SetUnchecked(observer.X, observer.Y, v)
			}
			if !st.Check(tr, v) {
				break
			}
			cumulative = st.Accumulate(cumulative, tr, dz)
		}
	}
}

// Seen returns the raw seen score at a position. Out-of-bounds queries are
// answered with zero rather than an error.
func (e *Engine) Seen(p grid.Tripoint) float64 {
	lc := e.level(p.Z)
	if lc == nil || !lc.seen.InBounds(p.X, p.Y) {
		e.log.Warn("seen query out of bounds",
			zap.Int("x", p.X), zap.Int("y", p.Y), zap.Int("z", p.Z))
		return 0
	}
	return lc.seen.AtUnchecked(p.X, p.Y)
}
