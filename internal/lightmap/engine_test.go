package lightmap

import (
	"errors"
	"math"
	"testing"

	"duskgrid/internal/config"
	"duskgrid/internal/grid"

	"go.uber.org/zap"
)

// mockSource is a hand-built TileSource. Floors are present everywhere
// unless a column is punched out; terrain defaults to open air.
type mockSource struct {
	w, h, depth int
	walls       map[grid.Tripoint]bool
	smoke       map[grid.Tripoint]bool
	noFloor     map[grid.Tripoint]bool
	outdoor     map[grid.Tripoint]bool
	diag        map[grid.Tripoint]DiagFlags
}

func newMockSource(w, h, depth int) *mockSource {
	return &mockSource{
		w: w, h: h, depth: depth,
		walls:   make(map[grid.Tripoint]bool),
		smoke:   make(map[grid.Tripoint]bool),
		noFloor: make(map[grid.Tripoint]bool),
		outdoor: make(map[grid.Tripoint]bool),
		diag:    make(map[grid.Tripoint]DiagFlags),
	}
}

func (m *mockSource) Dimensions() (int, int, int) { return m.w, m.h, m.depth }

func (m *mockSource) Transparency(x, y, z int) float64 {
	p := grid.Tripoint{X: x, Y: y, Z: z}
	if m.walls[p] {
		return TransparencySolid
	}
	if m.smoke[p] {
		return 0.3
	}
	return TransparencyOpenAir
}

func (m *mockSource) Floor(x, y, z int) bool {
	return !m.noFloor[grid.Tripoint{X: x, Y: y, Z: z}]
}

func (m *mockSource) DiagonalBlock(x, y, z int) DiagFlags {
	return m.diag[grid.Tripoint{X: x, Y: y, Z: z}]
}

func (m *mockSource) Outdoor(x, y, z int) bool {
	return m.outdoor[grid.Tripoint{X: x, Y: y, Z: z}]
}

func testConfig(radius int) *config.Config {
	cfg := config.Default()
	cfg.Vision.MaxViewDistance = radius
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, src TileSource) *Engine {
	t.Helper()
	e, err := New(cfg, src, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestNewRejectsInvalidInputs(t *testing.T) {
	cfg := testConfig(10)
	cfg.Lighting.LitThreshold = 100 // breaks bright > lit
	if _, err := New(cfg, newMockSource(5, 5, 1), zap.NewNop()); !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for bad thresholds, got %v", err)
	}

	if _, err := New(testConfig(10), newMockSource(0, 5, 1), zap.NewNop()); !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for zero width, got %v", err)
	}
}

func TestPointSourceFalloffFormula(t *testing.T) {
	cfg := testConfig(15)
	src := newMockSource(41, 41, 1)
	e := newTestEngine(t, cfg, src)

	center := grid.Tripoint{X: 20, Y: 20}
	e.Recompute(center, []Source{{Pos: center, Intensity: 50, Kind: SourcePoint}})

	for d := 1; d <= 15; d++ {
		want := 50 / (math.Exp(TransparencyOpenAir*float64(d)) * float64(d))
		got := e.ApparentLight(grid.Tripoint{X: 20 + d, Y: 20})
		if math.Abs(got-want) > epsilon {
			t.Errorf("d=%d: expected %v, got %v", d, want, got)
		}
	}
}

func TestRecomputeIsDeterministic(t *testing.T) {
	cfg := testConfig(12)
	src := newMockSource(31, 31, 1)
	for x := 10; x <= 18; x++ {
		src.walls[grid.Tripoint{X: x, Y: 9}] = true
	}
	src.smoke[grid.Tripoint{X: 15, Y: 20}] = true
	e := newTestEngine(t, cfg, src)

	observer := grid.Tripoint{X: 15, Y: 15}
	sources := []Source{
		{Pos: grid.Tripoint{X: 5, Y: 5}, Intensity: 40, Kind: SourcePoint},
		{Pos: grid.Tripoint{X: 25, Y: 22}, Intensity: 15, Kind: SourcePoint},
	}

	snapshot := func() ([]float64, []float64) {
		var light, seen []float64
		for y := 0; y < 31; y++ {
			for x := 0; x < 31; x++ {
				p := grid.Tripoint{X: x, Y: y}
				light = append(light, e.ApparentLight(p))
				seen = append(seen, e.Seen(p))
			}
		}
		return light, seen
	}

	e.Recompute(observer, sources)
	light1, seen1 := snapshot()
	e.Recompute(observer, sources)
	light2, seen2 := snapshot()

	for i := range light1 {
		if light1[i] != light2[i] {
			t.Fatalf("light value %d changed between identical recomputes: %v vs %v", i, light1[i], light2[i])
		}
		if seen1[i] != seen2[i] {
			t.Fatalf("seen value %d changed between identical recomputes: %v vs %v", i, seen1[i], seen2[i])
		}
	}
}

func TestWallLitFromFarSideReadsDark(t *testing.T) {
	cfg := testConfig(15)
	src := newMockSource(31, 31, 1)
	// North-south wall between observer (west) and torch (east).
	for y := 5; y <= 25; y++ {
		src.walls[grid.Tripoint{X: 15, Y: y}] = true
	}
	e := newTestEngine(t, cfg, src)

	observer := grid.Tripoint{X: 10, Y: 15}
	torch := grid.Tripoint{X: 20, Y: 15}
	e.Recompute(observer, []Source{{Pos: torch, Intensity: 60, Kind: SourcePoint}})

	wall := grid.Tripoint{X: 15, Y: 15}
	if got := e.ApparentLight(wall); got != 0 {
		t.Errorf("wall lit only from the far side must read dark, got %v", got)
	}
	if e.Classify(wall) != LightBlank {
		t.Errorf("expected blank wall, got %v", e.Classify(wall))
	}

	// From the torch's side the same wall face is visible and lit.
	e.Recompute(torch, []Source{{Pos: torch, Intensity: 60, Kind: SourcePoint}})
	if got := e.ApparentLight(wall); got <= 0 {
		t.Error("wall must read lit from the torch's side")
	}
}

func TestDirtyTileRebuild(t *testing.T) {
	cfg := testConfig(12)
	src := newMockSource(31, 31, 1)
	e := newTestEngine(t, cfg, src)

	observer := grid.Tripoint{X: 15, Y: 15}
	e.Recompute(observer, nil)
	target := grid.Tripoint{X: 15, Y: 10}
	if e.Seen(target) <= 0 {
		t.Fatal("target must start visible")
	}

	// Raise a wall between observer and target.
	wall := grid.Tripoint{X: 15, Y: 12}
	src.walls[wall] = true
	e.MarkDirty(wall)
	e.Recompute(observer, nil)
	if got := e.Seen(target); got != 0 {
		t.Errorf("target behind new wall must be hidden, got %v", got)
	}
	if e.CanSee(target) {
		t.Error("CanSee must report false behind the new wall")
	}

	// Tear it down again.
	delete(src.walls, wall)
	e.MarkDirty(wall)
	e.Recompute(observer, nil)
	if e.Seen(target) <= 0 {
		t.Error("target must be visible again after the wall is removed")
	}
}

func TestAmbientLightsOutdoorOnly(t *testing.T) {
	cfg := testConfig(12)
	src := newMockSource(21, 21, 1)
	src.outdoor[grid.Tripoint{X: 5, Y: 5}] = true
	e := newTestEngine(t, cfg, src)

	e.Recompute(grid.Tripoint{X: 10, Y: 10}, nil)
	outdoor := e.ApparentLight(grid.Tripoint{X: 5, Y: 5})
	if outdoor != cfg.Lighting.AmbientDaylight {
		t.Errorf("outdoor tile must hold the ambient value, got %v", outdoor)
	}
	if got := e.ApparentLight(grid.Tripoint{X: 6, Y: 5}); got != 0 {
		t.Errorf("indoor tile must stay dark, got %v", got)
	}
	if e.Classify(grid.Tripoint{X: 5, Y: 5}) != LightBright {
		t.Errorf("default ambient exceeds the bright threshold, got %v",
			e.Classify(grid.Tripoint{X: 5, Y: 5}))
	}
}

func TestBulkSourceDomination(t *testing.T) {
	cfg := testConfig(12)
	src := newMockSource(31, 31, 1)
	e := newTestEngine(t, cfg, src)
	observer := grid.Tripoint{X: 15, Y: 15}

	// Two adjacent buffered sources: the weaker is dominated and skipped.
	e.AddBulkSource(grid.Tripoint{X: 5, Y: 5}, 10)
	e.AddBulkSource(grid.Tripoint{X: 6, Y: 5}, 5)
	before := e.SweepCount()
	e.Recompute(observer, nil)
	adjacent := e.SweepCount() - before

	// The same strengths far apart both sweep.
	e.AddBulkSource(grid.Tripoint{X: 5, Y: 5}, 10)
	e.AddBulkSource(grid.Tripoint{X: 25, Y: 25}, 5)
	before = e.SweepCount()
	e.Recompute(observer, nil)
	separated := e.SweepCount() - before

	if separated != adjacent+1 {
		t.Errorf("dominated neighbor must skip its sweep: adjacent=%d separated=%d",
			adjacent, separated)
	}
}

func TestBulkSourceKeepsStrongest(t *testing.T) {
	cfg := testConfig(12)
	src := newMockSource(21, 21, 1)
	e := newTestEngine(t, cfg, src)

	pos := grid.Tripoint{X: 10, Y: 10}
	e.AddBulkSource(pos, 5)
	e.AddBulkSource(pos, 20)
	e.AddBulkSource(pos, 10)
	e.Recompute(pos, nil)

	if got := e.ApparentLight(pos); got != 20 {
		t.Errorf("buffered cell must keep the strongest strength, got %v", got)
	}
}

func TestWeakSourceIsNoOp(t *testing.T) {
	cfg := testConfig(12)
	src := newMockSource(21, 21, 1)
	e := newTestEngine(t, cfg, src)

	pos := grid.Tripoint{X: 10, Y: 10}
	e.Recompute(pos, []Source{{Pos: pos, Intensity: cfg.Lighting.MinUsableLight / 2, Kind: SourcePoint}})
	if got := e.ApparentLight(pos); got != 0 {
		t.Errorf("below-threshold source must contribute nothing, got %v", got)
	}
}

func TestVerticalColumnThroughOpenFloor(t *testing.T) {
	cfg := testConfig(12)
	src := newMockSource(21, 21, 3)
	// Open shaft above the torch column.
	src.noFloor[grid.Tripoint{X: 10, Y: 10, Z: 1}] = true
	src.noFloor[grid.Tripoint{X: 10, Y: 10, Z: 2}] = true
	e := newTestEngine(t, cfg, src)

	pos := grid.Tripoint{X: 10, Y: 10, Z: 0}
	e.Recompute(pos, []Source{{Pos: pos, Intensity: 40, Kind: SourcePoint}})

	if e.ApparentLight(grid.Tripoint{X: 10, Y: 10, Z: 1}) <= 0 {
		t.Error("tile directly above the torch must be lit through the shaft")
	}
	if e.ApparentLight(grid.Tripoint{X: 10, Y: 10, Z: 2}) <= 0 {
		t.Error("shaft must carry light two levels up")
	}
	// A floored column nearby stays dark.
	if got := e.ApparentLight(grid.Tripoint{X: 12, Y: 10, Z: 1}); got != 0 {
		t.Errorf("floored column must stay dark, got %v", got)
	}
}

func TestVerticalColumnStopsAtViewRadius(t *testing.T) {
	cfg := testConfig(2)
	src := newMockSource(9, 9, 6)
	// Open shaft taller than the view radius.
	for z := 0; z < 6; z++ {
		src.noFloor[grid.Tripoint{X: 4, Y: 4, Z: z}] = true
	}
	e := newTestEngine(t, cfg, src)

	base := grid.Tripoint{X: 4, Y: 4, Z: 0}
	e.Recompute(base, []Source{{Pos: base, Intensity: 1000, Kind: SourcePoint}})

	if e.ApparentLight(grid.Tripoint{X: 4, Y: 4, Z: 2}) <= 0 {
		t.Error("column tile within the view radius must be lit")
	}
	if got := e.ApparentLight(grid.Tripoint{X: 4, Y: 4, Z: 3}); got != 0 {
		t.Errorf("column tile beyond the view radius must stay dark, got %v", got)
	}
}

func TestResizePreservesOperation(t *testing.T) {
	cfg := testConfig(10)
	src := newMockSource(21, 21, 1)
	e := newTestEngine(t, cfg, src)
	e.Recompute(grid.Tripoint{X: 10, Y: 10}, nil)

	src.w, src.h = 31, 31
	if err := e.Resize(31, 31); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	observer := grid.Tripoint{X: 25, Y: 25}
	e.Recompute(observer, nil)
	if e.Seen(observer) <= 0 {
		t.Error("engine must operate on the resized region")
	}
}
