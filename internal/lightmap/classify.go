package lightmap

import (
	"duskgrid/internal/grid"
	"duskgrid/internal/mathutil"

	"go.uber.org/zap"
)

// LightLevel classifies how a tile appears to the current observer.
type LightLevel int

const (
	// LightBlank tiles are invisible: out of range, fully occluded, or dark.
	LightBlank LightLevel = iota
	// LightObstructed tiles receive light but no resolvable detail.
	LightObstructed
	// LightLow tiles are dim or hazy; shapes only.
	LightLow
	// LightLit tiles are comfortably visible.
	LightLit
	// LightBright tiles are flooded with light.
	LightBright
)

func (l LightLevel) String() string {
	switch l {
	case LightBlank:
		return "blank"
	case LightObstructed:
		return "obstructed"
	case LightLow:
		return "low"
	case LightLit:
		return "lit"
	case LightBright:
		return "bright"
	default:
		return "unknown"
	}
}

// IsTransparent reports whether light passes through the cached tile.
func (e *Engine) IsTransparent(p grid.Tripoint) bool {
	lc := e.level(p.Z)
	if lc == nil || !lc.transparency.InBounds(p.X, p.Y) {
		return false
	}
	return lc.transparency.AtUnchecked(p.X, p.Y) > TransparencySolid
}

// ApparentLight returns the brightness the observer perceives at a tile.
// Transparent tiles use their brightest quadrant. Opaque tiles only count
// quadrants facing a transparent neighbor the observer can see: a wall lit
// from the far side reads as dark from this side.
func (e *Engine) ApparentLight(p grid.Tripoint) float64 {
	lc := e.level(p.Z)
	if lc == nil || !lc.light.InBounds(p.X, p.Y) {
		e.log.Warn("light query out of bounds",
			zap.Int("x", p.X), zap.Int("y", p.Y), zap.Int("z", p.Z))
		return 0
	}
	q := lc.light.AtUnchecked(p.X, p.Y)
	if lc.transparency.AtUnchecked(p.X, p.Y) > TransparencySolid {
		return q.Max()
	}

	best := 0.0
	for _, quad := range [4]grid.Quadrant{grid.QuadNE, grid.QuadNW, grid.QuadSE, grid.QuadSW} {
		if !e.facesSeenNeighbor(lc, p.X, p.Y, quad) {
			continue
		}
		if v := q.Get(quad); v > best {
			best = v
		}
	}
	return best
}

// facesSeenNeighbor reports whether any of the three tiles adjoining the
// given corner of an opaque tile is transparent and currently seen.
func (e *Engine) facesSeenNeighbor(lc *levelCache, x, y int, quad grid.Quadrant) bool {
	var sx, sy int
	switch quad {
	case grid.QuadNE:
		sx, sy = 1, -1
	case grid.QuadNW:
		sx, sy = -1, -1
	case grid.QuadSE:
		sx, sy = 1, 1
	default:
		sx, sy = -1, 1
	}
	for _, n := range [3][2]int{{sx, 0}, {0, sy}, {sx, sy}} {
		nx, ny := x+n[0], y+n[1]
		if !lc.transparency.InBounds(nx, ny) {
			continue
		}
		if lc.transparency.AtUnchecked(nx, ny) > TransparencySolid &&
			lc.seen.AtUnchecked(nx, ny) > 0 {
			return true
		}
	}
	return false
}

// Classify maps a tile to its visibility class for the current observer.
func (e *Engine) Classify(p grid.Tripoint) LightLevel {
	lc := e.level(p.Z)
	if lc == nil || !lc.light.InBounds(p.X, p.Y) {
		e.log.Warn("classify out of bounds",
			zap.Int("x", p.X), zap.Int("y", p.Y), zap.Int("z", p.Z))
		return LightBlank
	}

	light := e.ApparentLight(p)
	seen := lc.seen.AtUnchecked(p.X, p.Y)

	// Beyond the view radius nothing resolves detail; a lit tile still
	// registers as an obstructed glow.
	dist := mathutil.Chebyshev(e.observer.X, e.observer.Y, p.X, p.Y)
	if seen <= 0 || dist > e.cfg.Vision.MaxViewDistance {
		if light > e.cfg.Lighting.LowThreshold {
			return LightObstructed
		}
		return LightBlank
	}

	level := LightBlank
	switch {
	case light > e.cfg.Lighting.BrightThreshold:
		level = LightBright
	case light > e.cfg.Lighting.LitThreshold:
		level = LightLit
	case light > e.cfg.Lighting.LowThreshold:
		level = LightLow
	case light >= e.cfg.Lighting.MinUsableLight:
		level = LightObstructed
	}

	// Degraded sight caps detail at shapes-only even under strong light.
	if seen < 1.0 && level > LightLow {
		level = LightLow
	}
	return level
}

// CanSee reports whether the observer resolves the target at all: within
// range and reached by the sight sweep.
func (e *Engine) CanSee(target grid.Tripoint) bool {
	if mathutil.Chebyshev(e.observer.X, e.observer.Y, target.X, target.Y) > e.cfg.Vision.MaxViewDistance {
		return false
	}
	return e.Seen(target) > 0
}
