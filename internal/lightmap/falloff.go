package lightmap

import (
	"math"
)

// Transparency is an exponential attenuation rate per tile. Solid
// terminates ray propagation outright; open air is the minimal attenuation
// a ray ever experiences.
const (
	TransparencySolid   = 0.0
	TransparencyOpenAir = 0.038376418216
)

// Strategy bundles the three pure functions that shape attenuation for one
// propagation mode (sight, light, or any other attenuating phenomenon).
// The shadowcasting sweeps are written once and parameterized with a
// Strategy instead of being instantiated per mode.
type Strategy struct {
	// Calc maps (source numerator, accumulated path transparency,
	// distance) to received intensity.
	Calc func(numerator, transparency float64, distance int) float64
	// Check decides whether propagation may continue past a tile with the
	// given transparency after reaching the given intensity.
	Check func(transparency, intensity float64) bool
	// Accumulate folds the transparency of the newest tile into the
	// running distance-weighted average along the ray.
	Accumulate func(cumulative, current float64, distance int) float64
}

// falloff is the shared decay curve: combined exponential and
// inverse-distance falloff. Distance is clamped to 1 so a source never
// divides by zero on its own tile.
func falloff(numerator, transparency float64, distance int) float64 {
	if distance < 1 {
		distance = 1
	}
	d := float64(distance)
	return numerator / (math.Exp(transparency*d) * d)
}

func accumulateTransparency(cumulative, current float64, distance int) float64 {
	if distance <= 1 {
		return current
	}
	return (float64(distance-1)*cumulative + current) / float64(distance)
}

// SightStrategy propagates as long as the tile is not solid; sight has no
// usability floor because the seen cache records partial visibility.
func SightStrategy() Strategy {
	return Strategy{
		Calc:       falloff,
		Check:      func(transparency, _ float64) bool { return transparency > TransparencySolid },
		Accumulate: accumulateTransparency,
	}
}

// LightStrategy additionally stops once intensity decays below the usable
// floor, so dim sources do not recurse across the whole region.
func LightStrategy(minUsable float64) Strategy {
	return Strategy{
		Calc: falloff,
		Check: func(transparency, intensity float64) bool {
			return transparency > TransparencySolid && intensity > minUsable
		},
		Accumulate: accumulateTransparency,
	}
}

// Tables precomputes the falloff curve for the two transparency constants
// nearly every ray runs through: plain open air and open air under the
// active weather penalty. Spans whose accumulated transparency equals one
// of these rates take an iterative table lookup instead of recomputing the
// exponential per tile.
//
// A Tables value is immutable once built. Refresh it exactly once, serially,
// before any concurrent per-level computation begins, and hand the snapshot
// to each worker by value.
type Tables struct {
	MaxRange int
	AirRate  float64
	FogRate  float64
	air      []float64
	fog      []float64
}

// RefreshTables builds a falloff table snapshot for the given weather sight
// penalty and view radius.
func RefreshTables(weatherPenalty float64, maxRange int) Tables {
	if maxRange < 1 {
		maxRange = 1
	}
	if weatherPenalty < 0 {
		weatherPenalty = 0
	}
	t := Tables{
		MaxRange: maxRange,
		AirRate:  TransparencyOpenAir,
		FogRate:  TransparencyOpenAir + weatherPenalty,
		air:      make([]float64, maxRange+1),
		fog:      make([]float64, maxRange+1),
	}
	for d := 0; d <= maxRange; d++ {
		t.air[d] = falloff(1.0, t.AirRate, d)
		t.fog[d] = falloff(1.0, t.FogRate, d)
	}
	return t
}

// Lookup returns the precomputed unit falloff for the given rate and
// distance, and whether the rate matched a table.
func (t *Tables) Lookup(rate float64, distance int) (float64, bool) {
	if distance < 0 || distance > t.MaxRange || len(t.air) == 0 {
		return 0, false
	}
	if distance < 1 {
		distance = 1
	}
	switch rate {
	case t.AirRate:
		return t.air[distance], true
	case t.FogRate:
		return t.fog[distance], true
	}
	return 0, false
}

// Calc computes received intensity, using the fast table path when the
// accumulated transparency matches a precomputed rate.
func (t *Tables) Calc(st Strategy, numerator, transparency float64, distance int) float64 {
	if unit, ok := t.Lookup(transparency, distance); ok {
		return numerator * unit
	}
	return st.Calc(numerator, transparency, distance)
}
