package mesh

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planetgenerator/core"
)

// ball is positive inside a sphere of radius r
func ball(r float64) ScalarField {
	return FieldFunc(func(p mgl64.Vec3) float64 { return r - p.Len() })
}

func sampleBall(t *testing.T, size int) *Grid {
	t.Helper()
	g, err := Sample(context.Background(), ball(1), size, 3, 4)
	require.NoError(t, err)
	return g
}

func TestTablesMatchCornerClassification(t *testing.T) {
	for cube := 0; cube < 256; cube++ {
		var crossed uint16
		for e, edge := range cellEdges {
			if (cube>>edge.lo)&1 != (cube>>edge.hi)&1 {
				crossed |= 1 << e
			}
		}
		require.Equal(t, crossed, edgeTable[cube], "edge table row %d", cube)

		var used uint16
		n := 0
		for _, e := range triTable[cube] {
			if e == -1 {
				break
			}
			used |= 1 << e
			n++
		}
		require.Equal(t, crossed, used, "triangle table row %d", cube)
		require.Zero(t, n%3, "row %d", cube)
		require.LessOrEqual(t, n, 15)
	}
}

func TestCellEdgesRunLowToHigh(t *testing.T) {
	for e, edge := range cellEdges {
		lo, hi := cornerOffsets[edge.lo], cornerOffsets[edge.hi]
		for k := 0; k < 3; k++ {
			want := 0
			if k == edge.axis {
				want = 1
			}
			assert.Equal(t, want, hi[k]-lo[k], "edge %d axis %d", e, k)
		}
	}
}

func TestGridLayout(t *testing.T) {
	g, err := NewGrid(5, 4)
	require.NoError(t, err)

	assert.Len(t, g.Values, 125)
	assert.Equal(t, 1, g.Index(1, 0, 0))
	assert.Equal(t, 5, g.Index(0, 1, 0))
	assert.Equal(t, 25, g.Index(0, 0, 1))
	assert.Equal(t, mgl64.Vec3{-2, -2, -2}, g.Point(0, 0, 0))
	assert.Equal(t, mgl64.Vec3{2, 0, -1}, g.Point(4, 2, 1))
	assert.Equal(t, 1.0, g.Step())
}

func TestSampleStoresFieldValues(t *testing.T) {
	g := sampleBall(t, 9)
	for z := 0; z < g.Size; z++ {
		for y := 0; y < g.Size; y++ {
			for x := 0; x < g.Size; x++ {
				require.Equal(t, 1-g.Point(x, y, z).Len(), g.At(x, y, z))
			}
		}
	}
}

func TestInvalidGrid(t *testing.T) {
	_, err := Sample(context.Background(), ball(1), 1, 3, 1)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = NewGrid(4, 0)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestSphereIsWatertight(t *testing.T) {
	s, err := Extract(context.Background(), sampleBall(t, 20), 0, 4)
	require.NoError(t, err)
	require.NotZero(t, s.TriangleCount())

	type edge struct{ a, b uint64 }
	directed := map[edge]int{}
	for i := 0; i < len(s.Edges); i += 3 {
		for k := 0; k < 3; k++ {
			directed[edge{s.Edges[i+k], s.Edges[i+(k+1)%3]}]++
		}
	}
	for e, n := range directed {
		require.Equal(t, 1, n, "edge %v used %d times in one direction", e, n)
		require.Equal(t, 1, directed[edge{e.b, e.a}], "edge %v has no twin", e)
	}
}

func TestSphereOrientationAndNormals(t *testing.T) {
	s, err := Extract(context.Background(), sampleBall(t, 20), 0, 2)
	require.NoError(t, err)

	for i := 0; i < len(s.Positions); i += 3 {
		a, b, c := s.Positions[i], s.Positions[i+1], s.Positions[i+2]
		face := b.Sub(a).Cross(c.Sub(a))
		if face.Len() < 1e-9 {
			continue
		}
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		require.Greater(t, face.Dot(centroid), 0.0, "triangle %d faces inward", i/3)
	}

	normals := Normals(s)
	require.Len(t, normals, len(s.Positions))
	for i, p := range s.Positions {
		assert.InDelta(t, 1, p.Len(), 0.01)
		assert.InDelta(t, 1, normals[i].Len(), 1e-9)
		assert.Greater(t, normals[i].Dot(p.Normalize()), 0.9)
	}
}

func TestSharedEdgesAreBitIdentical(t *testing.T) {
	s, err := Extract(context.Background(), sampleBall(t, 16), 0, 3)
	require.NoError(t, err)

	byEdge := map[uint64]mgl64.Vec3{}
	for i, id := range s.Edges {
		if p, ok := byEdge[id]; ok {
			require.Equal(t, p, s.Positions[i])
			continue
		}
		byEdge[id] = s.Positions[i]
	}
}

func TestExtractIndependentOfWorkers(t *testing.T) {
	g := sampleBall(t, 18)
	one, err := Extract(context.Background(), g, 0.1, 1)
	require.NoError(t, err)
	many, err := Extract(context.Background(), g, 0.1, 8)
	require.NoError(t, err)

	if diff := cmp.Diff(one, many); diff != "" {
		t.Errorf("surface depends on worker count (-one +many):\n%s", diff)
	}
}

func TestEmptySurface(t *testing.T) {
	s, err := Extract(context.Background(), sampleBall(t, 8), 1000, 0)
	require.NoError(t, err)
	assert.Zero(t, s.TriangleCount())
	assert.Empty(t, Normals(s))
	assert.Equal(t, core.BoundingSphere{}, Bound(Flatten(s.Positions)))
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sample(ctx, ball(1), 8, 3, 2)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Extract(ctx, sampleBall(t, 8), 0, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInterpolateSnaps(t *testing.T) {
	p1, p2 := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}

	assert.Equal(t, p1, interpolate(0, p1, p2, 1e-6, -1))
	assert.Equal(t, p2, interpolate(0, p1, p2, 1, -1e-6))
	assert.Equal(t, p1, interpolate(0, p1, p2, 0.5, 0.5+1e-6))
	assert.InDelta(t, 0.25, interpolate(0, p1, p2, 1, -3)[0], 1e-12)
}

func TestNormalsFallBackToRadial(t *testing.T) {
	p := mgl64.Vec3{0, 0, 2}
	s := &Surface{
		Positions: []mgl64.Vec3{p, p, p},
		Edges:     []uint64{1, 2, 3},
	}
	for _, n := range Normals(s) {
		assert.Equal(t, mgl64.Vec3{0, 0, 1}, n)
	}
}

func TestBoundContainsAllVertices(t *testing.T) {
	s, err := Extract(context.Background(), sampleBall(t, 14), 0, 0)
	require.NoError(t, err)

	flat := Flatten(s.Positions)
	b := Bound(flat)
	assert.InDelta(t, 1, b.Radius, 0.02)
	for i := 0; i < len(flat); i += 3 {
		d := mgl64.Vec3{
			float64(flat[i]) - float64(b.Center[0]),
			float64(flat[i+1]) - float64(b.Center[1]),
			float64(flat[i+2]) - float64(b.Center[2]),
		}
		require.LessOrEqual(t, d.Len(), float64(b.Radius))
	}
}

func TestBoundOfKnownPoints(t *testing.T) {
	b := Bound([]float32{-1, 0, 0, 3, 0, 0, 1, 2, 0})
	assert.Equal(t, float32(1), b.Center[0])
	assert.Equal(t, float32(1), b.Center[1])
	assert.InDelta(t, math.Sqrt(5), b.Radius, 1e-6)
}
