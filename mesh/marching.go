package mesh

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// snapEpsilon is the distance below which an interpolated vertex snaps to a
// lattice point instead of dividing by a near-zero difference.
const snapEpsilon = 1e-5

// cornerOffsets are the lattice offsets of the eight cell corners.
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// cellEdges lists, per edge, its lower corner, its upper corner and the axis
// it runs along. Interpolating from the lower corner keeps a lattice edge
// shared by four cells bit-identical in all of them.
var cellEdges = [12]struct {
	lo, hi, axis int
}{
	{0, 1, 0}, {1, 2, 1}, {3, 2, 0}, {0, 3, 1},
	{4, 5, 0}, {5, 6, 1}, {7, 6, 0}, {4, 7, 1},
	{0, 4, 2}, {1, 5, 2}, {2, 6, 2}, {3, 7, 2},
}

// Surface is the raw marching-cubes output: an unindexed triangle list.
// Edges holds, per vertex, the id of the lattice edge it was interpolated
// on; vertices with equal ids are the same point.
type Surface struct {
	Positions []mgl64.Vec3
	Edges     []uint64
}

func (s *Surface) TriangleCount() int {
	return len(s.Positions) / 3
}

func (s *Surface) append(o *Surface) {
	s.Positions = append(s.Positions, o.Positions...)
	s.Edges = append(s.Edges, o.Edges...)
}

// Extract polygonises the iso-surface value == iso of g. A corner whose
// value is below iso is outside the surface, and triangles wind
// counter-clockwise seen from outside. Cell slices are processed in parallel
// and concatenated in z order, so the result does not depend on scheduling.
// An empty Surface is a valid result.
func Extract(ctx context.Context, g *Grid, iso float64, workers int) (*Surface, error) {
	cells := g.Size - 1
	slices := make([]*Surface, cells)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workerLimit(workers))

	for z := 0; z < cells; z++ {
		if egCtx.Err() != nil {
			break
		}
		z := z
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			slices[z] = g.extractSlice(z, iso)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range slices {
		total += len(s.Positions)
	}
	out := &Surface{
		Positions: make([]mgl64.Vec3, 0, total),
		Edges:     make([]uint64, 0, total),
	}
	for _, s := range slices {
		out.append(s)
	}
	return out, nil
}

func (g *Grid) extractSlice(z int, iso float64) *Surface {
	s := &Surface{}
	cells := g.Size - 1

	var (
		values [8]float64
		verts  [12]mgl64.Vec3
		ids    [12]uint64
	)

	for y := 0; y < cells; y++ {
		for x := 0; x < cells; x++ {
			cube := 0
			for i, o := range cornerOffsets {
				values[i] = g.At(x+o[0], y+o[1], z+o[2])
				if values[i] < iso {
					cube |= 1 << i
				}
			}

			crossed := edgeTable[cube]
			if crossed == 0 {
				continue
			}

			var defined uint16
			for e, edge := range cellEdges {
				if crossed&(1<<e) == 0 {
					continue
				}
				lo, hi := cornerOffsets[edge.lo], cornerOffsets[edge.hi]
				verts[e] = interpolate(iso,
					g.Point(x+lo[0], y+lo[1], z+lo[2]),
					g.Point(x+hi[0], y+hi[1], z+hi[2]),
					values[edge.lo], values[edge.hi])
				ids[e] = uint64(g.Index(x+lo[0], y+lo[1], z+lo[2]))*3 + uint64(edge.axis)
				defined |= 1 << e
			}

			tris := &triTable[cube]
			for t := 0; t < len(tris) && tris[t] != -1; t += 3 {
				a, b, c := tris[t], tris[t+1], tris[t+2]
				if defined&(1<<a) == 0 || defined&(1<<b) == 0 || defined&(1<<c) == 0 {
					continue
				}
				s.Positions = append(s.Positions, verts[a], verts[b], verts[c])
				s.Edges = append(s.Edges, ids[a], ids[b], ids[c])
			}
		}
	}
	return s
}

// interpolate finds the iso crossing between lattice points p1 and p2.
func interpolate(iso float64, p1, p2 mgl64.Vec3, v1, v2 float64) mgl64.Vec3 {
	if math.Abs(iso-v1) < snapEpsilon {
		return p1
	}
	if math.Abs(iso-v2) < snapEpsilon {
		return p2
	}
	if math.Abs(v1-v2) < snapEpsilon {
		return p1
	}
	t := (iso - v1) / (v2 - v1)
	return p1.Add(p2.Sub(p1).Mul(t))
}
