package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/achilleasa/viewsynth/types"
)

// Selects how point lights are generated for each viewpoint.
type LightMode uint8

const (
	// A single point light at a fixed distance and energy.
	LightModeFixed LightMode = iota

	// A random number of point lights with random distance and energy.
	LightModeSampled
)

func (m LightMode) String() string {
	if m == LightModeSampled {
		return "sampled"
	}
	return "fixed"
}

// Parse a light mode name.
func ParseLightMode(name string) (LightMode, error) {
	switch name {
	case "", "fixed":
		return LightModeFixed, nil
	case "sampled":
		return LightModeSampled, nil
	}
	return LightModeFixed, fmt.Errorf("scene: unknown light mode %q", name)
}

// Bounds for randomized per-viewpoint lighting.
type LightBounds struct {
	Mode LightMode

	NumLow  int
	NumHigh int

	DistLow  float64
	DistHigh float64

	EnergyMean float64
	EnergyStd  float64

	EnvironmentEnergyLow  float64
	EnvironmentEnergyHigh float64

	AzimuthLow    float64
	AzimuthHigh   float64
	ElevationLow  float64
	ElevationHigh float64

	// Used by LightModeFixed.
	FixedDistance float64
	FixedEnergy   float64
}

// A point light.
type Light struct {
	Position types.Vec3
	Energy   float64
}

// The lighting setup of a single viewpoint.
type Lighting struct {
	Environment float64
	Points      []Light
}

// Draws per-viewpoint lighting from a caller supplied random source.
type LightSampler struct {
	bounds LightBounds
	rng    *rand.Rand
}

// Create a light sampler. The sampler is deterministic for a given rng seed.
func NewLightSampler(bounds LightBounds, rng *rand.Rand) *LightSampler {
	return &LightSampler{
		bounds: bounds,
		rng:    rng,
	}
}

func (ls *LightSampler) uniform(low, high float64) float64 {
	return low + (high-low)*ls.rng.Float64()
}

// Sample the lighting for the next viewpoint.
func (ls *LightSampler) Sample() Lighting {
	b := ls.bounds
	lighting := Lighting{
		Environment: ls.uniform(b.EnvironmentEnergyLow, b.EnvironmentEnergyHigh),
	}

	numLights := 1
	if b.Mode == LightModeSampled {
		numLights = b.NumLow
		if b.NumHigh > b.NumLow {
			numLights += ls.rng.Intn(b.NumHigh - b.NumLow + 1)
		}
	}

	lighting.Points = make([]Light, 0, numLights)
	for i := 0; i < numLights; i++ {
		azimuth := ls.uniform(b.AzimuthLow, b.AzimuthHigh)
		elevation := ls.uniform(b.ElevationLow, b.ElevationHigh)

		dist, energy := b.FixedDistance, b.FixedEnergy
		if b.Mode == LightModeSampled {
			dist = ls.uniform(b.DistLow, b.DistHigh)
			energy = math.Max(0, b.EnergyMean+b.EnergyStd*ls.rng.NormFloat64())
		}

		lighting.Points = append(lighting.Points, Light{
			Position: SphericalToCartesian(dist, azimuth, elevation),
			Energy:   energy,
		})
	}
	return lighting
}
