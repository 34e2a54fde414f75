// Package planet runs the full generation pipeline: noise, density, grid
// sampling, marching cubes, normals, biome colors and bounding sphere.
package planet

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"planetgenerator/biome"
	"planetgenerator/core"
	"planetgenerator/mesh"
	"planetgenerator/terrain"
)

// Generator turns PlanetParams into meshes. It holds no per-call state and is
// safe for concurrent use.
type Generator struct {
	log     *zap.Logger
	workers int
	palette biome.Palette
}

type Option func(*Generator)

// WithWorkers bounds the z-slices sampled or extracted at once. n <= 0 means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

func WithPalette(p biome.Palette) Option {
	return func(g *Generator) { g.palette = p }
}

// NewGenerator creates a generator logging to log. A nil logger disables
// logging.
func NewGenerator(log *zap.Logger, opts ...Option) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Generator{log: log, palette: biome.DefaultPalette()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the mesh for p with default settings and no logging.
func Generate(p core.PlanetParams) (*core.GeneratedMesh, error) {
	return NewGenerator(nil).Generate(context.Background(), p)
}

// Generate validates p and runs the pipeline. The same p always yields the
// same buffers, bit for bit. A cancelled ctx returns ctx.Err() and no mesh.
func (g *Generator) Generate(ctx context.Context, p core.PlanetParams) (*core.GeneratedMesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	field, err := terrain.ForParams(p)
	if err != nil {
		return nil, err
	}

	grid, err := mesh.Sample(ctx, field, p.GridSize, p.BoxSize, g.workers)
	if err != nil {
		return nil, fmt.Errorf("sampling density grid: %w", err)
	}
	sampled := time.Now()

	surface, err := mesh.Extract(ctx, grid, p.IsoLevel, g.workers)
	if err != nil {
		return nil, fmt.Errorf("extracting surface: %w", err)
	}
	extracted := time.Now()

	positions := mesh.Flatten(surface.Positions)
	normals := mesh.Flatten(mesh.Normals(surface))
	colors := biome.NewColorizer(p, g.palette).Apply(positions, normals)

	m := &core.GeneratedMesh{
		Positions:      positions,
		Normals:        normals,
		Colors:         colors,
		BoundingSphere: mesh.Bound(positions),
	}

	g.log.Debug("Planet generated",
		zap.Uint32("seed", p.Seed),
		zap.Int("gridSize", p.GridSize),
		zap.Int("triangles", m.TriangleCount()),
		zap.Duration("sample", sampled.Sub(start)),
		zap.Duration("extract", extracted.Sub(sampled)),
		zap.Duration("shade", time.Since(extracted)),
	)
	return m, nil
}
