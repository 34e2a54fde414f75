package terrain

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planetgenerator/core"
	"planetgenerator/noise"
)

type constantNoise float64

func (c constantNoise) Sample(_, _, _ float64) float64 { return float64(c) }

func TestHeightWithFlatNoise(t *testing.T) {
	f := New(2.35, constantNoise(0), core.DefaultTerrainConfig())

	// continent 0.5^1.35 sits just below the plain level: mostly land, no mountains
	h := f.Height(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, 0.0302822344, h, 1e-9)
	assert.Equal(t, h, f.Height(mgl64.Vec3{0, 0, -1}))
}

func TestDensitySign(t *testing.T) {
	f := New(2.35, constantNoise(0), core.DefaultTerrainConfig())
	h := f.Height(up)

	assert.Less(t, f.Density(mgl64.Vec3{0, 1, 0}), 0.0)
	assert.Greater(t, f.Density(mgl64.Vec3{0, 4, 0}), 0.0)
	assert.InDelta(t, 0, f.Density(mgl64.Vec3{0, 2.35 + h, 0}), 1e-12)
	assert.Equal(t, -f.Density(mgl64.Vec3{1, 2, 3}), f.Value(mgl64.Vec3{1, 2, 3}))
}

func TestDensityAtOriginUsesUp(t *testing.T) {
	f, err := ForParams(core.DefaultPlanetParams())
	require.NoError(t, err)

	want := -(f.Radius() + f.Height(up))
	assert.Equal(t, want, f.Density(mgl64.Vec3{}))
}

func TestHeightBounded(t *testing.T) {
	for _, basis := range []core.NoiseBasis{core.NoiseGradient, core.NoiseOpenSimplex} {
		t.Run(string(basis), func(t *testing.T) {
			p := core.DefaultPlanetParams()
			p.Noise = basis
			f, err := ForParams(p)
			require.NoError(t, err)

			limit := p.Terrain.MaxHeight()
			// Fibonacci sphere
			const n = 4000
			golden := math.Pi * (3 - math.Sqrt(5))
			for i := 0; i < n; i++ {
				y := 1 - 2*(float64(i)+0.5)/n
				r := math.Sqrt(1 - y*y)
				th := golden * float64(i)
				d := mgl64.Vec3{r * math.Cos(th), y, r * math.Sin(th)}

				h := f.Height(d)
				require.LessOrEqual(t, math.Abs(h), limit, "direction %v", d)
			}
		})
	}
}

func TestUnknownNoiseBasis(t *testing.T) {
	p := core.DefaultPlanetParams()
	p.Noise = "cellular"
	_, err := ForParams(p)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestSeedChangesHeights(t *testing.T) {
	a := New(1, noise.NewGradient(7), core.DefaultTerrainConfig())
	b := New(1, noise.NewGradient(8), core.DefaultTerrainConfig())

	d := mgl64.Vec3{0.48, 0.6, 0.64}
	assert.NotEqual(t, a.Height(d), b.Height(d))
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, Smoothstep(-1, 0, 1))
	assert.Equal(t, 1.0, Smoothstep(2, 0, 1))
	assert.Equal(t, 0.5, Smoothstep(0.5, 0, 1))
	assert.Equal(t, 0.0, Smoothstep(0.1, 0.2, 0.2))
	assert.Equal(t, 1.0, Smoothstep(0.2, 0.2, 0.2))
}
