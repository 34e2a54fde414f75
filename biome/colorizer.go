// Package biome assigns a color to every mesh vertex from its height, slope,
// latitude and a synthetic humidity pattern.
package biome

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"planetgenerator/core"
	"planetgenerator/terrain"
)

// Colorizer colors vertices of one planet. Heights are measured in world
// units above Radius, and SeaLevel, BeachBand and FoamBand use the same unit.
type Colorizer struct {
	Palette   Palette
	Radius    float64
	SeaLevel  float64
	BeachBand float64
	FoamBand  float64
}

// NewColorizer takes the radius and sea/beach/foam bands from p.
func NewColorizer(p core.PlanetParams, palette Palette) *Colorizer {
	return &Colorizer{
		Palette:   palette,
		Radius:    p.Radius,
		SeaLevel:  p.SeaLevelWorld,
		BeachBand: p.BeachBand,
		FoamBand:  p.FoamBand,
	}
}

// Color returns the color of a vertex at v with unit normal n.
func (c *Colorizer) Color(v, n mgl64.Vec3) colorful.Color {
	r := v.Len()
	dir := mgl64.Vec3{0, 1, 0}
	if r > 0 {
		dir = v.Mul(1 / r)
	}

	h := r - c.Radius
	slope := 1 - math.Abs(n.Dot(dir))
	return c.surface(h, dir, slope)
}

// surface applies the height, slope and climate rules in order, then adds the
// foam highlight at the shoreline.
func (c *Colorizer) surface(h float64, dir mgl64.Vec3, slope float64) colorful.Color {
	pal := &c.Palette
	sea := c.SeaLevel
	lat := math.Abs(dir[1])

	var col colorful.Color
	switch {
	case h < sea-c.BeachBand:
		col = pal.DeepOcean
	case h < sea+c.BeachBand:
		t := terrain.Smoothstep(h, sea-c.BeachBand, sea+c.BeachBand)
		col = pal.DeepOcean.BlendRgb(pal.ShallowOcean, t)
	default:
		humidity := clamp01(0.5 + 0.35*math.Sin(3*dir[0]+2*dir[2]) + 0.25*math.Sin(6*dir[1]+1.5*dir[0]))
		arid := clamp01(1 - humidity - 0.25*lat)

		col = pal.Desert.BlendRgb(pal.Savanna, 1-arid)
		col = col.BlendRgb(pal.Forest, humidity)

		col = col.BlendRgb(pal.Rock, terrain.Smoothstep(h, sea, sea+0.28)*0.75)
		col = col.BlendRgb(pal.Rock, terrain.Smoothstep(slope, 0.08, 0.22)*0.95)

		snow := math.Max(terrain.Smoothstep(lat, 0.70, 0.95), terrain.Smoothstep(h, sea+0.22, sea+0.45))
		col = col.BlendRgb(pal.Snow, snow*0.9)
	}

	foam := (1 - terrain.Smoothstep(math.Abs(h-sea), 0, c.FoamBand)) * 0.5
	return col.BlendRgb(pal.Foam, foam).Clamped()
}

// Apply colors every vertex of parallel flat position and normal buffers and
// returns a parallel flat RGB buffer.
func (c *Colorizer) Apply(positions, normals []float32) []float32 {
	out := make([]float32, 0, len(positions))
	for i := 0; i+2 < len(positions); i += 3 {
		v := mgl64.Vec3{float64(positions[i]), float64(positions[i+1]), float64(positions[i+2])}
		n := mgl64.Vec3{float64(normals[i]), float64(normals[i+1]), float64(normals[i+2])}
		col := c.Color(v, n)
		out = append(out, float32(col.R), float32(col.G), float32(col.B))
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
