package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultPlanetParams().Validate())

	cases := map[string]func(p *PlanetParams){
		"grid size one":  func(p *PlanetParams) { p.GridSize = 1 },
		"grid size zero": func(p *PlanetParams) { p.GridSize = 0 },
		"zero radius":    func(p *PlanetParams) { p.Radius = 0 },
		"nan radius":     func(p *PlanetParams) { p.Radius = math.NaN() },
		"negative box":   func(p *PlanetParams) { p.BoxSize = -1 },
		"infinite iso":   func(p *PlanetParams) { p.IsoLevel = math.Inf(1) },
		"negative beach": func(p *PlanetParams) { p.BeachBand = -0.1 },
		"negative foam":  func(p *PlanetParams) { p.FoamBand = -0.1 },
		"unknown noise":  func(p *PlanetParams) { p.Noise = "value" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := DefaultPlanetParams()
			mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)
		})
	}
}

func TestValidateAcceptsMinimalGrid(t *testing.T) {
	p := DefaultPlanetParams()
	p.GridSize = 2
	p.Noise = ""
	assert.NoError(t, p.Validate())
}

func TestSeedFromWrapsModulo32(t *testing.T) {
	assert.Equal(t, uint32(1), SeedFrom(1<<32+1))
	assert.Equal(t, uint32(math.MaxUint32), SeedFrom(-1))
	assert.Equal(t, uint32(7), SeedFrom(7))
}

func TestParamsAreComparable(t *testing.T) {
	a := DefaultPlanetParams()
	b := DefaultPlanetParams()
	assert.True(t, a == b)

	b.Terrain.Amplitude = 0.6
	assert.False(t, a == b)
}

func TestTerrainBounds(t *testing.T) {
	cfg := DefaultTerrainConfig()
	assert.Greater(t, cfg.MaxHeight(), 0.0)
	assert.LessOrEqual(t, cfg.MaxHeight(), cfg.Amplitude)

	cfg.Amplitude = 0
	assert.Zero(t, cfg.MaxHeight())
}

func TestMeshClone(t *testing.T) {
	m := &GeneratedMesh{
		Positions: []float32{1, 2, 3, 4, 5, 6, 7, 8, 9},
		Normals:   []float32{0, 1, 0, 0, 1, 0, 0, 1, 0},
		Colors:    []float32{1, 1, 1, 1, 1, 1, 1, 1, 1},
	}
	c := m.Clone()
	require.Equal(t, m, c)

	c.Positions[0] = 42
	assert.Equal(t, float32(1), m.Positions[0])
	assert.Equal(t, 1, m.TriangleCount())
	assert.Equal(t, 3, m.VertexCount())
	assert.False(t, m.IsEmpty())
	assert.True(t, (&GeneratedMesh{}).IsEmpty())
}

func TestShellsFor(t *testing.T) {
	p := DefaultPlanetParams()
	p.SeaLevelWorld = 0.01
	s := ShellsFor(p, 0.3)

	assert.InDelta(t, 2.36, s.Water, 1e-12)
	assert.InDelta(t, 2.65, s.Atmosphere, 1e-12)
	assert.InDelta(t, 2.35*1.04, s.CloudsMin, 1e-12)
	assert.InDelta(t, 2.35*1.06, s.CloudsMax, 1e-12)
}

func TestValidateTerrain(t *testing.T) {
	require.NoError(t, DefaultTerrainConfig().Validate())

	cases := map[string]func(c *TerrainConfig){
		"nan amplitude":           func(c *TerrainConfig) { c.Amplitude = math.NaN() },
		"infinite hill height":    func(c *TerrainConfig) { c.HillHeight = math.Inf(1) },
		"nan ocean depth":         func(c *TerrainConfig) { c.OceanDepth = math.NaN() },
		"negative continent freq": func(c *TerrainConfig) { c.ContinentFrequency = -5 },
		"zero micro frequency":    func(c *TerrainConfig) { c.MicroFrequency = 0 },
		"infinite mountain freq":  func(c *TerrainConfig) { c.MountainFrequency = math.Inf(1) },
		"zero exponent":           func(c *TerrainConfig) { c.ContinentExponent = 0 },
		"plain below sea":         func(c *TerrainConfig) { c.PlainLevel = 0.01 },
		"plain equals sea":        func(c *TerrainConfig) { c.PlainLevel = c.SeaLevel },
		"plain at one":            func(c *TerrainConfig) { c.PlainLevel = 1 },
		"negative sea level":      func(c *TerrainConfig) { c.SeaLevel = -0.1 },
		"erosion above one":       func(c *TerrainConfig) { c.ShoreErosion = 1.5 },
		"negative amplitude":      func(c *TerrainConfig) { c.Amplitude = -0.5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := DefaultPlanetParams()
			mutate(&p.Terrain)
			assert.ErrorIs(t, p.Terrain.Validate(), ErrInvalidParameter)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)
		})
	}
}

func TestValidateTerrainAcceptsFlatPlanet(t *testing.T) {
	p := DefaultPlanetParams()
	p.Terrain.Amplitude = 0
	p.Terrain.ShoreErosion = 0
	assert.NoError(t, p.Validate())
}

func TestApproximateTrianglesFollowsParams(t *testing.T) {
	p := DefaultPlanetParams()
	base := p.ApproximateTriangles()
	assert.Greater(t, base, 0)

	p.GridSize = 2*p.GridSize - 1
	assert.Greater(t, p.ApproximateTriangles(), 3*base)

	p.GridSize = 1
	assert.Zero(t, p.ApproximateTriangles())
}

func TestCloneKeepsEmptyBuffers(t *testing.T) {
	m := &GeneratedMesh{Positions: []float32{}, Normals: []float32{}, Colors: []float32{}}
	c := m.Clone()
	assert.NotNil(t, c.Positions)
	assert.NotNil(t, c.Normals)
	assert.NotNil(t, c.Colors)
	assert.True(t, c.IsEmpty())

	c = (&GeneratedMesh{}).Clone()
	assert.NotNil(t, c.Positions)
	assert.Empty(t, c.Positions)
}
