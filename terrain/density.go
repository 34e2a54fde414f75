// Package terrain turns a noise basis into the planet's signed density field.
package terrain

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"planetgenerator/core"
	"planetgenerator/noise"
)

// Per-layer offsets into the noise domain so that the layers sampled with a
// single basis stay uncorrelated.
var (
	continentOffset   = mgl64.Vec3{11.7, -3.2, 5.9}
	shoreWarpOffset   = mgl64.Vec3{-27.1, 14.6, 8.3}
	shoreDetailOffset = mgl64.Vec3{41.9, 2.8, -19.4}
	oceanOffset       = mgl64.Vec3{-6.5, -33.3, 21.2}
	hillOffset        = mgl64.Vec3{57.4, 9.1, -44.7}
	ridgeOffset       = mgl64.Vec3{-71.3, 38.6, 12.9}
	ridgeDetailOffset = mgl64.Vec3{18.2, -62.5, -35.8}
	microOffset       = mgl64.Vec3{93.6, 47.2, 66.1}
)

var up = mgl64.Vec3{0, 1, 0}

// Field is the density field of one planet. Density is negative inside the
// solid and positive outside; Value is its negation, which is what the grid
// sampler stores. A Field is immutable and safe for concurrent use.
type Field struct {
	radius float64
	noise  noise.Field
	cfg    core.TerrainConfig
}

func New(radius float64, n noise.Field, cfg core.TerrainConfig) *Field {
	return &Field{radius: radius, noise: n, cfg: cfg}
}

// ForParams builds the noise basis and density field described by p.
func ForParams(p core.PlanetParams) (*Field, error) {
	n, err := noise.New(p.Noise, p.Seed)
	if err != nil {
		return nil, fmt.Errorf("building noise: %w", err)
	}
	return New(p.Radius, n, p.Terrain), nil
}

func (f *Field) Radius() float64 {
	return f.radius
}

// Height returns the terrain height above the nominal radius in the unit
// direction d.
func (f *Field) Height(d mgl64.Vec3) float64 {
	c := f.cfg

	continent := math.Pow((f.sample(d, c.ContinentFrequency, continentOffset)+1)/2, c.ContinentExponent)
	landMask := Smoothstep(continent, c.SeaLevel, c.PlainLevel)
	mountainMask := Smoothstep(continent, c.PlainLevel, 1.0)

	shore := 1 - math.Abs(2*landMask-1)
	shoreWarp := shore * (c.ShoreWarpWeight*f.sample(d, c.ShoreWarpFrequency, shoreWarpOffset) +
		c.ShoreWarpDetailWeight*f.sample(d, c.ShoreWarpDetailFrequency, shoreDetailOffset))

	ocean := c.OceanDepth + c.OceanVariation*f.sample(d, c.OceanFrequency, oceanOffset)

	hills := c.HillHeight * (f.sample(d, c.HillFrequency, hillOffset) + 1) / 2
	ridges := 0.65*f.ridge(d, c.MountainFrequency, ridgeOffset) +
		0.35*f.ridge(d, c.MountainFrequency*2, ridgeDetailOffset)
	mountains := c.MountainHeight * mountainMask * ridges
	micro := c.MicroHeight * mountainMask * f.sample(d, c.MicroFrequency, microOffset)

	land := (hills + mountains + micro) * (1 - shore*c.ShoreErosion)

	return (lerp(ocean, land, landMask) + shoreWarp) * c.Amplitude
}

// Density is |p| - (radius + height(p/|p|)).
func (f *Field) Density(p mgl64.Vec3) float64 {
	r := p.Len()
	return r - (f.radius + f.Height(direction(p, r)))
}

// Value is the sampled scalar, -Density. It is positive inside the planet.
func (f *Field) Value(p mgl64.Vec3) float64 {
	return -f.Density(p)
}

func (f *Field) sample(d mgl64.Vec3, freq float64, offset mgl64.Vec3) float64 {
	q := d.Mul(freq).Add(offset)
	return f.noise.Sample(q[0], q[1], q[2])
}

// ridge folds the noise so that its zero crossings become sharp crests
func (f *Field) ridge(d mgl64.Vec3, freq float64, offset mgl64.Vec3) float64 {
	return 1 - math.Abs(f.sample(d, freq, offset))
}

// direction returns p/r, or +Y at the origin
func direction(p mgl64.Vec3, r float64) mgl64.Vec3 {
	if r == 0 {
		return up
	}
	return p.Mul(1 / r)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep is the cubic Hermite step of x between e0 and e1. Equal edges
// degrade to a hard step.
func Smoothstep(x, e0, e1 float64) float64 {
	if e1 == e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
