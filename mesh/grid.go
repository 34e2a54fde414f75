// Package mesh samples a scalar field on a regular lattice and extracts its
// iso-surface with marching cubes.
package mesh

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"planetgenerator/core"
)

// ScalarField is sampled at every lattice point. Implementations must be
// safe for concurrent use.
type ScalarField interface {
	Value(p mgl64.Vec3) float64
}

// FieldFunc adapts a plain function to ScalarField
type FieldFunc func(p mgl64.Vec3) float64

func (f FieldFunc) Value(p mgl64.Vec3) float64 { return f(p) }

// Grid is a Size^3 lattice of field values over a cube of side BoxSize
// centred at the origin. Values is flat with x varying fastest, then y,
// then z.
type Grid struct {
	Size    int
	BoxSize float64
	Values  []float64

	coords []float64 // lattice coordinate per axis index
}

// NewGrid allocates an unsampled grid.
func NewGrid(size int, boxSize float64) (*Grid, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: grid size %d < 2", core.ErrInvalidParameter, size)
	}
	if !(boxSize > 0) {
		return nil, fmt.Errorf("%w: box size %v must be positive", core.ErrInvalidParameter, boxSize)
	}

	step := boxSize / float64(size-1)
	half := boxSize / 2
	coords := make([]float64, size)
	for i := range coords {
		coords[i] = -half + float64(i)*step
	}

	return &Grid{
		Size:    size,
		BoxSize: boxSize,
		Values:  make([]float64, size*size*size),
		coords:  coords,
	}, nil
}

// Index returns the flat offset of lattice point (x, y, z)
func (g *Grid) Index(x, y, z int) int {
	return (z*g.Size+y)*g.Size + x
}

func (g *Grid) At(x, y, z int) float64 {
	return g.Values[g.Index(x, y, z)]
}

// Point returns the world position of lattice point (x, y, z)
func (g *Grid) Point(x, y, z int) mgl64.Vec3 {
	return mgl64.Vec3{g.coords[x], g.coords[y], g.coords[z]}
}

// Step is the spacing between neighbouring lattice points.
func (g *Grid) Step() float64 {
	return g.BoxSize / float64(g.Size-1)
}

// Sample evaluates field at every lattice point, one z-slice per task with at
// most workers slices in flight. workers <= 0 means GOMAXPROCS.
func Sample(ctx context.Context, field ScalarField, size int, boxSize float64, workers int) (*Grid, error) {
	g, err := NewGrid(size, boxSize)
	if err != nil {
		return nil, err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workerLimit(workers))

	for z := 0; z < size; z++ {
		if egCtx.Err() != nil {
			break
		}
		z := z
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			g.sampleSlice(field, z)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// a cancelled parent may have stopped the loop before every slice was queued
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grid) sampleSlice(field ScalarField, z int) {
	n := g.Size
	i := g.Index(0, 0, z)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			g.Values[i] = field.Value(g.Point(x, y, z))
			i++
		}
	}
}

func workerLimit(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}
