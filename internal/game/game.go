package game

import (
	"duskgrid/internal/config"
	"duskgrid/internal/grid"
	"duskgrid/internal/lightmap"
	"duskgrid/internal/world"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// torchIntensity is the strength of lights the player drops with L.
const torchIntensity = 40.0

// ember is a buffered bulk source the player placed with B.
type ember struct {
	pos      grid.Tripoint
	strength float64
}

// Game drives the interactive lighting demo: an observer walking a
// multi-level region while the engine recomputes visibility each change.
type Game struct {
	cfg    *config.Config
	log    *zap.Logger
	region *world.Region
	engine *lightmap.Engine

	observer grid.Tripoint
	dropped  []lightmap.Source
	embers   []ember

	weatherOn      bool
	weatherPenalty float64
	needsRecompute bool
	showHelp       bool
}

// New wires the demo together and runs the initial recompute.
func New(cfg *config.Config, region *world.Region, engine *lightmap.Engine, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		cfg:            cfg,
		log:            log,
		region:         region,
		engine:         engine,
		observer:       region.Start(),
		weatherOn:      cfg.Weather.SightPenalty > 0,
		weatherPenalty: cfg.Weather.SightPenalty,
		needsRecompute: true,
		showHelp:       true,
	}
	if g.weatherPenalty == 0 {
		// Nothing configured; the F toggle still needs a fog to switch on.
		g.weatherPenalty = 0.05
	}
	region.SetDirtyHook(engine.MarkDirty)
	return g
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}

	g.handleMovement()
	g.handleLevelSwitch()
	g.handleLights()
	g.handleWeather()

	if g.needsRecompute {
		g.recompute()
		g.needsRecompute = false
	}
	return nil
}

func (g *Game) handleMovement() {
	dx, dy := 0, 0
	if inpututil.IsKeyJustPressed(ebiten.KeyW) || inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		dy = -1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) || inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		dy = 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) || inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		dx = -1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) || inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		dx = 1
	}
	if dx == 0 && dy == 0 {
		return
	}
	next := grid.Tripoint{X: g.observer.X + dx, Y: g.observer.Y + dy, Z: g.observer.Z}
	if g.region.Walkable(next) {
		g.observer = next
		g.needsRecompute = true
	}
}

func (g *Game) handleLevelSwitch() {
	_, _, levels := g.region.Dimensions()
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) && g.observer.Z+1 < levels {
		g.observer.Z++
		g.needsRecompute = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) && g.observer.Z > 0 {
		g.observer.Z--
		g.needsRecompute = true
	}
}

func (g *Game) handleLights() {
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		g.dropped = append(g.dropped, lightmap.Source{
			Pos:       g.observer,
			Intensity: torchIntensity,
			Kind:      lightmap.SourcePoint,
		})
		g.log.Info("torch dropped",
			zap.Int("x", g.observer.X), zap.Int("y", g.observer.Y), zap.Int("z", g.observer.Z))
		g.needsRecompute = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.embers = append(g.embers, ember{pos: g.observer, strength: torchIntensity / 2})
		g.needsRecompute = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && (len(g.dropped) > 0 || len(g.embers) > 0) {
		g.dropped = g.dropped[:0]
		g.embers = g.embers[:0]
		g.needsRecompute = true
	}
}

func (g *Game) handleWeather() {
	if !inpututil.IsKeyJustPressed(ebiten.KeyF) {
		return
	}
	g.weatherOn = !g.weatherOn
	if g.weatherOn {
		g.engine.SetWeatherPenalty(g.weatherPenalty)
	} else {
		g.engine.SetWeatherPenalty(0)
	}
	g.needsRecompute = true
}

func (g *Game) recompute() {
	sources := append(g.region.Sources(), g.dropped...)
	// Bulk sources are buffered fresh each tick; the flush consumes them.
	for _, em := range g.embers {
		g.engine.AddBulkSource(em.pos, em.strength)
	}
	g.engine.Recompute(g.observer, sources)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.cfg.GetScreenWidth(), g.cfg.GetScreenHeight()
}
