package lightmap

import (
	"math"

	"duskgrid/internal/grid"

	"go.uber.org/zap"
)

// SetWeatherPenalty updates the global sight penalty. The change takes
// effect on the next Recompute, which refreshes the falloff tables and the
// weather-adjusted transparency cache.
func (e *Engine) SetWeatherPenalty(penalty float64) {
	if penalty < 0 {
		penalty = 0
	}
	if penalty == e.cfg.Weather.SightPenalty {
		return
	}
	e.cfg.Weather.SightPenalty = penalty
	e.MarkAllDirty()
	e.log.Info("weather sight penalty changed", zap.Float64("penalty", penalty))
}

// Recompute rebuilds the light and seen grids for one tick. The result is a
// pure function of the tile source, the configuration, the observer, and the
// source list: recomputing with unchanged inputs reproduces the grids
// bit-identically.
//
// Serial prologue and epilogue bracket a parallel middle. Table refresh and
// cache rebuild run serially; per-level work that only touches its own
// level's grids fans out on the worker pool; cross-level sweeps and the seen
// build run serially afterwards.
func (e *Engine) Recompute(observer grid.Tripoint, sources []Source) {
	e.tables = RefreshTables(e.cfg.Weather.SightPenalty, e.cfg.Vision.MaxViewDistance)
	e.fogRate = e.tables.FogRate
	for z := range e.levels {
		e.rebuildLevel(z)
		e.levels[z].light.Fill(grid.Quad{})
	}

	perLevel := make([][]Source, len(e.levels))
	var crossLevel []Source
	multi := len(e.levels) > 1
	for _, s := range sources {
		if s.Pos.Z < 0 || s.Pos.Z >= len(e.levels) {
			e.log.Warn("light source out of bounds",
				zap.Int("x", s.Pos.X), zap.Int("y", s.Pos.Y), zap.Int("z", s.Pos.Z))
			continue
		}
		// Point sources in a multi-level region write across levels and must
		// stay serial; narrow arcs stay flat on their own level, while an arc
		// widened to a full circle degenerates to a point source.
		if multi && (s.Kind == SourcePoint || s.HalfAngle >= math.Pi) {
			crossLevel = append(crossLevel, s)
			continue
		}
		perLevel[s.Pos.Z] = append(perLevel[s.Pos.Z], s)
	}

	e.pool.ParallelFor(0, len(e.levels), func(z int) {
		e.applyAmbient(z, e.cfg.Lighting.AmbientDaylight)
		if !multi {
			e.flushBulkSources(z)
		}
		for _, s := range perLevel[z] {
			switch s.Kind {
			case SourceArc:
				e.ApplyArcLight(s.Pos, s.Intensity, s.Bearing, s.HalfAngle)
			default:
				e.ApplyPointLight(s.Pos, s.Intensity)
			}
		}
	})

	if multi {
		for z := range e.levels {
			e.flushBulkSources(z)
		}
		for _, s := range crossLevel {
			e.ApplyPointLight(s.Pos, s.Intensity)
		}
	}

	e.buildSeen(observer)
}
