package world

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"duskgrid/internal/config"
	"duskgrid/internal/grid"
	"duskgrid/internal/lightmap"

	"go.uber.org/zap"
)

// Region is the loaded multi-level tile map. It implements
// lightmap.TileSource; level 0 is the bottom of the stack.
type Region struct {
	width, height int
	levels        []*grid.Grid[*TileDef]
	keys          []*grid.Grid[string]
	tiles         *TileSet
	start         grid.Tripoint
	log           *zap.Logger

	// onDirty is invoked for every tile mutated after loading.
	onDirty func(grid.Tripoint)
}

// LoadRegion reads one ASCII map file per z-level, bottom level first.
// Every level must share the same dimensions.
func LoadRegion(cfg *config.Config, tiles *TileSet, log *zap.Logger) (*Region, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.World.MapFiles) == 0 {
		return nil, fmt.Errorf("no map files configured")
	}

	r := &Region{tiles: tiles, log: log, start: grid.Tripoint{X: -1, Y: -1, Z: -1}}
	for z, path := range cfg.World.MapFiles {
		if err := r.loadLevel(z, path); err != nil {
			return nil, err
		}
	}
	if r.start.X < 0 {
		return nil, fmt.Errorf("no start marker '+' found in any map file")
	}
	log.Info("region loaded",
		zap.Int("width", r.width), zap.Int("height", r.height),
		zap.Int("levels", len(r.levels)))
	return r, nil
}

func (r *Region) loadLevel(z int, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open map file %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading map file %s: %w", path, err)
	}
	if len(lines) == 0 {
		return fmt.Errorf("map file %s contains no map data", path)
	}

	height := len(lines)
	width := len(lines[0])
	for i, line := range lines {
		if len(line) != width {
			return fmt.Errorf("%s line %d has inconsistent width: expected %d, got %d",
				path, i+1, width, len(line))
		}
	}
	if z == 0 {
		r.width, r.height = width, height
	} else if width != r.width || height != r.height {
		return fmt.Errorf("%s dimensions %dx%d do not match level 0 (%dx%d)",
			path, width, height, r.width, r.height)
	}

	defs := grid.MustNew[*TileDef](width, height)
	keys := grid.MustNew[string](width, height)
	for y, line := range lines {
		for x, ch := range line {
			letter := string(ch)
			if ch == '+' {
				if r.start.X >= 0 {
					return fmt.Errorf("%s: duplicate start marker at (%d, %d)", path, x, y)
				}
				r.start = grid.Tripoint{X: x, Y: y, Z: z}
				letter = "."
			}
			key, def, ok := r.tiles.ByLetter(letter)
			if !ok {
				return fmt.Errorf("%s line %d: unknown tile letter %q", path, y+1, letter)
			}
			defs.SetUnchecked(x, y, def)
			keys.SetUnchecked(x, y, key)
		}
	}
	r.levels = append(r.levels, defs)
	r.keys = append(r.keys, keys)
	return nil
}

// SetDirtyHook registers the callback invoked on every tile mutation.
func (r *Region) SetDirtyHook(fn func(grid.Tripoint)) {
	r.onDirty = fn
}

// Start returns the observer spawn position marked with '+'.
func (r *Region) Start() grid.Tripoint { return r.start }

// Dimensions implements lightmap.TileSource.
func (r *Region) Dimensions() (int, int, int) {
	return r.width, r.height, len(r.levels)
}

func (r *Region) def(x, y, z int) *TileDef {
	if z < 0 || z >= len(r.levels) || !r.levels[z].InBounds(x, y) {
		return nil
	}
	return r.levels[z].AtUnchecked(x, y)
}

// Transparency implements lightmap.TileSource.
func (r *Region) Transparency(x, y, z int) float64 {
	def := r.def(x, y, z)
	if def == nil || def.Solid {
		return lightmap.TransparencySolid
	}
	if def.Attenuation > 0 {
		return def.Attenuation
	}
	return lightmap.TransparencyOpenAir
}

// Floor implements lightmap.TileSource.
func (r *Region) Floor(x, y, z int) bool {
	def := r.def(x, y, z)
	return def != nil && def.Floor
}

// DiagonalBlock implements lightmap.TileSource.
func (r *Region) DiagonalBlock(x, y, z int) lightmap.DiagFlags {
	def := r.def(x, y, z)
	if def == nil {
		return 0
	}
	var flags lightmap.DiagFlags
	if def.CutNE {
		flags |= lightmap.DiagBlockNE
	}
	if def.CutNW {
		flags |= lightmap.DiagBlockNW
	}
	return flags
}

// Outdoor implements lightmap.TileSource.
func (r *Region) Outdoor(x, y, z int) bool {
	def := r.def(x, y, z)
	return def != nil && def.Outdoor
}

// Walkable reports whether the observer may stand on the tile.
func (r *Region) Walkable(p grid.Tripoint) bool {
	def := r.def(p.X, p.Y, p.Z)
	return def != nil && def.Walkable
}

// TileKey returns the tile key at a position, or "" out of bounds.
func (r *Region) TileKey(p grid.Tripoint) string {
	if p.Z < 0 || p.Z >= len(r.keys) || !r.keys[p.Z].InBounds(p.X, p.Y) {
		return ""
	}
	return r.keys[p.Z].AtUnchecked(p.X, p.Y)
}

// SetTile replaces the tile at a position and fires the dirty hook.
func (r *Region) SetTile(p grid.Tripoint, key string) error {
	def := r.tiles.Get(key)
	if def == nil {
		return fmt.Errorf("unknown tile key %q", key)
	}
	if p.Z < 0 || p.Z >= len(r.levels) || !r.levels[p.Z].InBounds(p.X, p.Y) {
		return grid.ErrOutOfBounds
	}
	r.levels[p.Z].SetUnchecked(p.X, p.Y, def)
	r.keys[p.Z].SetUnchecked(p.X, p.Y, key)
	if r.onDirty != nil {
		r.onDirty(p)
	}
	return nil
}

// Sources collects the light emitters authored in the map: every tile whose
// definition carries a positive light value.
func (r *Region) Sources() []lightmap.Source {
	var sources []lightmap.Source
	for z, lvl := range r.levels {
		for y := 0; y < r.height; y++ {
			for x := 0; x < r.width; x++ {
				def := lvl.AtUnchecked(x, y)
				if def == nil || def.Light <= 0 {
					continue
				}
				s := lightmap.Source{
					Pos:       grid.Tripoint{X: x, Y: y, Z: z},
					Intensity: def.Light,
					Kind:      lightmap.SourcePoint,
				}
				if def.Beam != nil {
					s.Kind = lightmap.SourceArc
					s.Bearing = def.Beam.BearingDeg * math.Pi / 180
					s.HalfAngle = def.Beam.HalfAngleDeg * math.Pi / 180
				}
				sources = append(sources, s)
			}
		}
	}
	return sources
}
