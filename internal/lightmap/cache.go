package lightmap

import (
	"fmt"

	"duskgrid/internal/config"
	"duskgrid/internal/grid"
	"duskgrid/internal/threading/core"

	"go.uber.org/zap"
)

// TileSource supplies the static per-tile inputs the engine caches:
// terrain transparency (terrain + furniture + transient fields already
// combined), floor presence, diagonal structural blocks, and whether a tile
// is open to the sky. The engine never mutates the source.
type TileSource interface {
	Dimensions() (width, height, levels int)
	Transparency(x, y, z int) float64
	Floor(x, y, z int) bool
	DiagonalBlock(x, y, z int) DiagFlags
	Outdoor(x, y, z int) bool
}

// levelCache bundles the grids for one z-level. Transparency, floor, diag
// and outdoor are rebuilt incrementally from the TileSource as tiles are
// marked dirty; light and seen are recomputed from scratch every tick.
type levelCache struct {
	transparency *grid.Grid[float64] // weather-adjusted attenuation rates
	light        *grid.Grid[grid.Quad]
	seen         *grid.Grid[float64]
	floor        *grid.Grid[bool]
	diag         *grid.Grid[DiagFlags]
	outdoor      *grid.Grid[bool]
	bulk         *grid.Grid[float64] // scratch buffer for bulk sources

	dirty    map[grid.Point]struct{}
	allDirty bool
}

func newLevelCache(width, height int) (*levelCache, error) {
	lc := &levelCache{dirty: make(map[grid.Point]struct{}), allDirty: true}
	var err error
	if lc.transparency, err = grid.New[float64](width, height); err != nil {
		return nil, err
	}
	lc.light = grid.MustNew[grid.Quad](width, height)
	lc.seen = grid.MustNew[float64](width, height)
	lc.floor = grid.MustNew[bool](width, height)
	lc.diag = grid.MustNew[DiagFlags](width, height)
	lc.outdoor = grid.MustNew[bool](width, height)
	lc.bulk = grid.MustNew[float64](width, height)
	return lc, nil
}

func (lc *levelCache) grids() levelGrids {
	return levelGrids{
		transparency: lc.transparency,
		floor:        lc.floor,
		diag:         lc.diag,
	}
}

// Engine owns the per-level cache bundles and produces the per-tile
// visibility and brightness classification. Grids are allocated once per
// loaded region and resized only when the region dimensions change.
type Engine struct {
	cfg    *config.Config
	log    *zap.Logger
	source TileSource

	width, height int
	levels        []*levelCache

	tables   Tables
	fogRate  float64
	observer grid.Tripoint

	pool   *core.WorkerPool
	sweeps *core.SafeCounter
}

// New builds an engine over the source's current dimensions.
func New(cfg *config.Config, source TileSource, log *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	w, h, depth := source.Dimensions()
	if w <= 0 || h <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: region dimensions %dx%dx%d",
			config.ErrInvalidConfiguration, w, h, depth)
	}

	e := &Engine{
		cfg:    cfg,
		log:    log,
		source: source,
		width:  w,
		height: h,
		pool:   core.NewWorkerPool(0),
		sweeps: core.NewSafeCounter(),
	}
	e.pool.Start()
	for z := 0; z < depth; z++ {
		lc, err := newLevelCache(w, h)
		if err != nil {
			return nil, err
		}
		e.levels = append(e.levels, lc)
	}
	e.fogRate = TransparencyOpenAir + cfg.Weather.SightPenalty
	e.tables = RefreshTables(cfg.Weather.SightPenalty, cfg.Vision.MaxViewDistance)
	return e, nil
}

// Close stops the engine's worker pool.
func (e *Engine) Close() {
	e.pool.Stop()
}

// Levels returns the number of cached z-levels.
func (e *Engine) Levels() int { return len(e.levels) }

// MarkDirty queues one tile for cache rebuild before the next recompute.
func (e *Engine) MarkDirty(p grid.Tripoint) {
	lc := e.level(p.Z)
	if lc == nil {
		e.log.Warn("mark dirty out of bounds", zap.Int("x", p.X), zap.Int("y", p.Y), zap.Int("z", p.Z))
		return
	}
	if !lc.allDirty {
		lc.dirty[grid.Point{X: p.X, Y: p.Y}] = struct{}{}
	}
}

// MarkAllDirty forces a full cache rebuild (map swap, weather change).
func (e *Engine) MarkAllDirty() {
	for _, lc := range e.levels {
		lc.allDirty = true
	}
}

// Resize adjusts every level cache to new region dimensions, preserving
// cells whose coordinates remain valid, and forces a rebuild.
func (e *Engine) Resize(width, height int) error {
	for _, lc := range e.levels {
		for _, g := range []interface{ Resize(int, int) error }{
			lc.transparency, lc.light, lc.seen, lc.floor, lc.diag, lc.outdoor, lc.bulk,
		} {
			if err := g.Resize(width, height); err != nil {
				return err
			}
		}
		lc.allDirty = true
	}
	e.width = width
	e.height = height
	return nil
}

func (e *Engine) level(z int) *levelCache {
	if z < 0 || z >= len(e.levels) {
		return nil
	}
	return e.levels[z]
}

// effectiveTransparency clamps a raw source value into the legal domain
// and substitutes the weather-adjusted rate for plain open air. Values
// between solid and open air are degenerate authoring; they clamp up to
// open air rather than erroring.
func (e *Engine) effectiveTransparency(raw float64) float64 {
	if raw <= TransparencySolid {
		return TransparencySolid
	}
	if raw < TransparencyOpenAir {
		raw = TransparencyOpenAir
	}
	if raw == TransparencyOpenAir && e.fogRate > TransparencyOpenAir {
		return e.fogRate
	}
	return raw
}

// rebuildLevel refreshes the dirty subset of one level's static grids from
// the tile source.
func (e *Engine) rebuildLevel(z int) {
	lc := e.levels[z]
	if lc.allDirty {
		for y := 0; y < e.height; y++ {
			for x := 0; x < e.width; x++ {
				e.rebuildTile(lc, x, y, z)
			}
		}
		lc.allDirty = false
		clear(lc.dirty)
		return
	}
	for p := range lc.dirty {
		if lc.transparency.InBounds(p.X, p.Y) {
			e.rebuildTile(lc, p.X, p.Y, z)
		}
	}
	clear(lc.dirty)
}

func (e *Engine) rebuildTile(lc *levelCache, x, y, z int) {
	lc.transparency.SetUnchecked(x, y, e.effectiveTransparency(e.source.Transparency(x, y, z)))
	lc.floor.SetUnchecked(x, y, e.source.Floor(x, y, z))
	lc.diag.SetUnchecked(x, y, e.source.DiagonalBlock(x, y, z))
	lc.outdoor.SetUnchecked(x, y, e.source.Outdoor(x, y, z))
}

// SweepCount returns the number of octant sweeps since engine creation;
// the demo HUD surfaces it and the bulk-source tests assert on it.
func (e *Engine) SweepCount() int64 {
	return e.sweeps.Get()
}
