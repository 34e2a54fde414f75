package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidParameter is returned for any PlanetParams value the generator
// cannot work with.
var ErrInvalidParameter = errors.New("invalid planet parameter")

// NoiseBasis selects the gradient noise implementation behind the density field
type NoiseBasis string

const (
	NoiseGradient    NoiseBasis = "gradient"
	NoiseOpenSimplex NoiseBasis = "opensimplex"
)

// TerrainConfig holds every tunable constant of the terrain density field.
// Frequencies are in cycles per unit direction, heights are in units of the
// global amplitude.
type TerrainConfig struct {
	ContinentFrequency float64 `yaml:"continentFrequency" json:"continentFrequency"`
	ContinentExponent  float64 `yaml:"continentExponent" json:"continentExponent"`
	SeaLevel           float64 `yaml:"seaLevel" json:"seaLevel"`
	PlainLevel         float64 `yaml:"plainLevel" json:"plainLevel"`

	ShoreWarpFrequency       float64 `yaml:"shoreWarpFrequency" json:"shoreWarpFrequency"`
	ShoreWarpWeight          float64 `yaml:"shoreWarpWeight" json:"shoreWarpWeight"`
	ShoreWarpDetailFrequency float64 `yaml:"shoreWarpDetailFrequency" json:"shoreWarpDetailFrequency"`
	ShoreWarpDetailWeight    float64 `yaml:"shoreWarpDetailWeight" json:"shoreWarpDetailWeight"`
	ShoreErosion             float64 `yaml:"shoreErosion" json:"shoreErosion"`

	OceanFrequency float64 `yaml:"oceanFrequency" json:"oceanFrequency"`
	OceanDepth     float64 `yaml:"oceanDepth" json:"oceanDepth"`
	OceanVariation float64 `yaml:"oceanVariation" json:"oceanVariation"`

	HillFrequency     float64 `yaml:"hillFrequency" json:"hillFrequency"`
	HillHeight        float64 `yaml:"hillHeight" json:"hillHeight"`
	MountainFrequency float64 `yaml:"mountainFrequency" json:"mountainFrequency"`
	MountainHeight    float64 `yaml:"mountainHeight" json:"mountainHeight"`
	MicroFrequency    float64 `yaml:"microFrequency" json:"microFrequency"`
	MicroHeight       float64 `yaml:"microHeight" json:"microHeight"`

	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
}

// DefaultTerrainConfig returns the stock continent/ocean/mountain mix
func DefaultTerrainConfig() TerrainConfig {
	return TerrainConfig{
		ContinentFrequency: 0.55,
		ContinentExponent:  1.35,
		SeaLevel:           0.06,
		PlainLevel:         0.42,

		ShoreWarpFrequency:       4.5,
		ShoreWarpWeight:          0.03,
		ShoreWarpDetailFrequency: 11.0,
		ShoreWarpDetailWeight:    0.012,
		ShoreErosion:             0.45,

		OceanFrequency: 0.9,
		OceanDepth:     -0.18,
		OceanVariation: 0.06,

		HillFrequency:     1.3,
		HillHeight:        0.12,
		MountainFrequency: 2.6,
		MountainHeight:    0.55,
		MicroFrequency:    8.0,
		MicroHeight:       0.03,

		Amplitude: 0.55,
	}
}

// MaxHeight is an upper bound, in world units, of the terrain height above
// the nominal radius.
func (c TerrainConfig) MaxHeight() float64 {
	land := math.Abs(c.HillHeight) + math.Abs(c.MountainHeight) + math.Abs(c.MicroHeight)
	ocean := math.Abs(c.OceanDepth) + math.Abs(c.OceanVariation)
	warp := math.Abs(c.ShoreWarpWeight) + math.Abs(c.ShoreWarpDetailWeight)
	return (math.Max(land, ocean) + warp) * math.Abs(c.Amplitude)
}

// Validate reports the first terrain constant the density field cannot work
// with. Every failure wraps ErrInvalidParameter.
func (c TerrainConfig) Validate() error {
	values := []struct {
		name string
		v    float64
	}{
		{"continentFrequency", c.ContinentFrequency},
		{"continentExponent", c.ContinentExponent},
		{"seaLevel", c.SeaLevel},
		{"plainLevel", c.PlainLevel},
		{"shoreWarpFrequency", c.ShoreWarpFrequency},
		{"shoreWarpWeight", c.ShoreWarpWeight},
		{"shoreWarpDetailFrequency", c.ShoreWarpDetailFrequency},
		{"shoreWarpDetailWeight", c.ShoreWarpDetailWeight},
		{"shoreErosion", c.ShoreErosion},
		{"oceanFrequency", c.OceanFrequency},
		{"oceanDepth", c.OceanDepth},
		{"oceanVariation", c.OceanVariation},
		{"hillFrequency", c.HillFrequency},
		{"hillHeight", c.HillHeight},
		{"mountainFrequency", c.MountainFrequency},
		{"mountainHeight", c.MountainHeight},
		{"microFrequency", c.MicroFrequency},
		{"microHeight", c.MicroHeight},
		{"amplitude", c.Amplitude},
	}
	for _, f := range values {
		if !finite(f.v) {
			return fmt.Errorf("%w: terrain %s %v must be finite", ErrInvalidParameter, f.name, f.v)
		}
	}

	frequencies := []struct {
		name string
		v    float64
	}{
		{"continentFrequency", c.ContinentFrequency},
		{"shoreWarpFrequency", c.ShoreWarpFrequency},
		{"shoreWarpDetailFrequency", c.ShoreWarpDetailFrequency},
		{"oceanFrequency", c.OceanFrequency},
		{"hillFrequency", c.HillFrequency},
		{"mountainFrequency", c.MountainFrequency},
		{"microFrequency", c.MicroFrequency},
	}
	for _, f := range frequencies {
		if f.v <= 0 {
			return fmt.Errorf("%w: terrain %s %v must be positive", ErrInvalidParameter, f.name, f.v)
		}
	}

	switch {
	case c.ContinentExponent <= 0:
		return fmt.Errorf("%w: terrain continentExponent %v must be positive", ErrInvalidParameter, c.ContinentExponent)
	case c.SeaLevel < 0 || c.SeaLevel >= c.PlainLevel || c.PlainLevel >= 1:
		// continent values lie in [0, 1]; both masks need a non-empty ramp
		return fmt.Errorf("%w: terrain needs 0 <= seaLevel < plainLevel < 1, got %v and %v",
			ErrInvalidParameter, c.SeaLevel, c.PlainLevel)
	case c.ShoreErosion < 0 || c.ShoreErosion > 1:
		return fmt.Errorf("%w: terrain shoreErosion %v outside [0, 1]", ErrInvalidParameter, c.ShoreErosion)
	case c.Amplitude < 0:
		return fmt.Errorf("%w: terrain amplitude %v must be >= 0", ErrInvalidParameter, c.Amplitude)
	}
	return nil
}

// MaxDepth is an upper bound, in world units, of the terrain depth below the
// nominal radius.
func (c TerrainConfig) MaxDepth() float64 {
	return c.MaxHeight()
}

// PlanetParams is the complete, immutable input of one generation call.
// It is comparable and doubles as a cache key.
type PlanetParams struct {
	Seed          uint32        `yaml:"seed" json:"seed"`
	Radius        float64       `yaml:"radius" json:"radius"`
	GridSize      int           `yaml:"gridSize" json:"gridSize"`
	BoxSize       float64       `yaml:"boxSize" json:"boxSize"`
	IsoLevel      float64       `yaml:"isoLevel" json:"isoLevel"`
	SeaLevelWorld float64       `yaml:"seaLevelWorld" json:"seaLevelWorld"`
	BeachBand     float64       `yaml:"beachBand" json:"beachBand"`
	FoamBand      float64       `yaml:"foamBand" json:"foamBand"`
	Noise         NoiseBasis    `yaml:"noise" json:"noise"`
	Terrain       TerrainConfig `yaml:"terrain" json:"terrain"`
}

// DefaultPlanetParams returns the parameters the front end uses for its hero planet
func DefaultPlanetParams() PlanetParams {
	return PlanetParams{
		Seed:          1,
		Radius:        2.35,
		GridSize:      64,
		BoxSize:       6,
		IsoLevel:      0,
		SeaLevelWorld: 0.0,
		BeachBand:     0.02,
		FoamBand:      0.012,
		Noise:         NoiseGradient,
		Terrain:       DefaultTerrainConfig(),
	}
}

// SeedFrom reduces an arbitrary integer seed modulo 2^32.
func SeedFrom(v int64) uint32 {
	return uint32(uint64(v))
}

// Validate reports the first parameter the generator cannot accept.
// Every failure wraps ErrInvalidParameter.
func (p PlanetParams) Validate() error {
	if p.GridSize < 2 {
		return fmt.Errorf("%w: gridSize %d < 2", ErrInvalidParameter, p.GridSize)
	}
	if !finite(p.Radius) || p.Radius <= 0 {
		return fmt.Errorf("%w: radius %v must be positive", ErrInvalidParameter, p.Radius)
	}
	if !finite(p.BoxSize) || p.BoxSize <= 0 {
		return fmt.Errorf("%w: boxSize %v must be positive", ErrInvalidParameter, p.BoxSize)
	}
	if !finite(p.IsoLevel) || !finite(p.SeaLevelWorld) {
		return fmt.Errorf("%w: isoLevel and seaLevelWorld must be finite", ErrInvalidParameter)
	}
	if !finite(p.BeachBand) || p.BeachBand < 0 {
		return fmt.Errorf("%w: beachBand %v must be >= 0", ErrInvalidParameter, p.BeachBand)
	}
	if !finite(p.FoamBand) || p.FoamBand < 0 {
		return fmt.Errorf("%w: foamBand %v must be >= 0", ErrInvalidParameter, p.FoamBand)
	}
	switch p.Noise {
	case "", NoiseGradient, NoiseOpenSimplex:
	default:
		return fmt.Errorf("%w: unknown noise basis %q", ErrInvalidParameter, p.Noise)
	}
	return p.Terrain.Validate()
}

// ApproximateTriangles is a rough triangle count for a sphere-like surface
// at p's grid resolution, used in log messages before generating.
func (p PlanetParams) ApproximateTriangles() int {
	if p.GridSize < 2 || !(p.BoxSize > 0) {
		return 0
	}
	cellsAcross := float64(p.GridSize-1) * 2 * p.Radius / p.BoxSize
	// about two triangles per surface cell of a sphere with that diameter
	return int(2 * math.Pi * cellsAcross * cellsAcross)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// BoundingSphere encloses every vertex of a mesh
type BoundingSphere struct {
	Center mgl32.Vec3 `json:"center"`
	Radius float32    `json:"radius"`
}

// GeneratedMesh is an unindexed triangle list: every three consecutive
// vertices form one triangle. Positions, Normals and Colors hold three
// float32 values per vertex and are parallel.
type GeneratedMesh struct {
	Positions      []float32      `json:"positions"`
	Normals        []float32      `json:"normals"`
	Colors         []float32      `json:"colors"`
	BoundingSphere BoundingSphere `json:"boundingSphere"`
}

func (m *GeneratedMesh) VertexCount() int {
	return len(m.Positions) / 3
}

func (m *GeneratedMesh) TriangleCount() int {
	return m.VertexCount() / 3
}

// IsEmpty reports a mesh without triangles. An empty mesh means "no
// terrain", not a failure.
func (m *GeneratedMesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Vertex returns the position of vertex i
func (m *GeneratedMesh) Vertex(i int) mgl32.Vec3 {
	return mgl32.Vec3{m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2]}
}

// Clone returns a deep copy sharing no buffers with m.
func (m *GeneratedMesh) Clone() *GeneratedMesh {
	return &GeneratedMesh{
		Positions:      cloneBuffer(m.Positions),
		Normals:        cloneBuffer(m.Normals),
		Colors:         cloneBuffer(m.Colors),
		BoundingSphere: m.BoundingSphere,
	}
}

// cloneBuffer keeps an empty buffer empty rather than nil.
func cloneBuffer(b []float32) []float32 {
	out := make([]float32, len(b))
	copy(out, b)
	return out
}

// Shells are the radii an external renderer layers around the terrain.
type Shells struct {
	Water      float64 `json:"water"`
	Atmosphere float64 `json:"atmosphere"`
	CloudsMin  float64 `json:"cloudsMin"`
	CloudsMax  float64 `json:"cloudsMax"`
}

// ShellsFor places the water, atmosphere and cloud shells in the same frame
// and unit scale as the terrain.
func ShellsFor(p PlanetParams, atmosphereThickness float64) Shells {
	return Shells{
		Water:      p.Radius + p.SeaLevelWorld,
		Atmosphere: p.Radius + atmosphereThickness,
		CloudsMin:  p.Radius * 1.04,
		CloudsMax:  p.Radius * 1.06,
	}
}
