package game

import (
	"fmt"
	"image/color"

	"duskgrid/internal/grid"
	"duskgrid/internal/lightmap"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	hudHeight = 72
	padding   = 16
)

// Per-class tile colors. Obstructed glows read as a cold haze; the lit ramp
// runs warm.
var (
	colorBlank      = color.RGBA{10, 10, 14, 255}
	colorObstructed = color.RGBA{34, 38, 58, 255}
	colorLow        = color.RGBA{70, 62, 44, 255}
	colorLit        = color.RGBA{140, 124, 82, 255}
	colorBright     = color.RGBA{210, 190, 130, 255}
	colorWallSeen   = color.RGBA{110, 110, 120, 255}
	colorObserver   = color.RGBA{80, 200, 255, 255}
	colorTorch      = color.RGBA{255, 160, 60, 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{15, 15, 22, 255})

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	mapAreaX := padding
	mapAreaY := hudHeight
	mapAreaW := screenW - padding*2
	mapAreaH := screenH - hudHeight - padding

	width, height, _ := g.region.Dimensions()
	tileSize := mapAreaW / width
	if alt := mapAreaH / height; alt < tileSize {
		tileSize = alt
	}
	if tileSize < 2 {
		tileSize = 2
	}
	originX := mapAreaX + (mapAreaW-width*tileSize)/2
	originY := mapAreaY + (mapAreaH-height*tileSize)/2

	for ty := 0; ty < height; ty++ {
		for tx := 0; tx < width; tx++ {
			p := grid.Tripoint{X: tx, Y: ty, Z: g.observer.Z}
			clr := g.tileColor(p)
			vector.DrawFilledRect(screen,
				float32(originX+tx*tileSize), float32(originY+ty*tileSize),
				float32(tileSize), float32(tileSize), clr, false)
		}
	}

	for _, s := range g.dropped {
		if s.Pos.Z != g.observer.Z {
			continue
		}
		drawMarker(screen, originX, originY, tileSize, s.Pos.X, s.Pos.Y, colorTorch)
	}
	for _, em := range g.embers {
		if em.pos.Z != g.observer.Z {
			continue
		}
		drawMarker(screen, originX, originY, tileSize, em.pos.X, em.pos.Y, colorTorch)
	}
	drawMarker(screen, originX, originY, tileSize, g.observer.X, g.observer.Y, colorObserver)

	g.drawHUD(screen)
}

// tileColor maps a tile's classification to its rendered color. Seen walls
// get a neutral grey so structure stays readable against the lit ramp.
func (g *Game) tileColor(p grid.Tripoint) color.RGBA {
	level := g.engine.Classify(p)
	if !g.engine.IsTransparent(p) && level > lightmap.LightBlank {
		return colorWallSeen
	}
	switch level {
	case lightmap.LightBright:
		return colorBright
	case lightmap.LightLit:
		return colorLit
	case lightmap.LightLow:
		return colorLow
	case lightmap.LightObstructed:
		return colorObstructed
	default:
		return colorBlank
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	weather := "clear"
	if g.weatherOn {
		weather = "fog"
	}
	title := fmt.Sprintf("duskgrid  z=%d  (%d, %d)  weather: %s", g.observer.Z,
		g.observer.X, g.observer.Y, weather)
	text.Draw(screen, title, basicfont.Face7x13, padding, 22, color.White)

	stats := fmt.Sprintf("lights: %d  embers: %d  sweeps: %d",
		len(g.dropped), len(g.embers), g.engine.SweepCount())
	ebitenutil.DebugPrintAt(screen, stats, padding, 32)

	if g.showHelp {
		help := "WASD/arrows move  PgUp/PgDn level  L torch  B ember  C clear  F weather  H help  Esc quit"
		ebitenutil.DebugPrintAt(screen, help, padding, 48)
	}
}

func drawMarker(screen *ebiten.Image, originX, originY, tileSize, tx, ty int, clr color.RGBA) {
	if tileSize < 2 {
		return
	}
	centerX := float32(originX + tx*tileSize + tileSize/2)
	centerY := float32(originY + ty*tileSize + tileSize/2)
	vector.DrawFilledCircle(screen, centerX, centerY, float32(tileSize)*0.35, clr, true)
}
