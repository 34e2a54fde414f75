package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"planetgenerator/core"
)

// Normals returns one unit normal per vertex of s. Face normals are summed,
// weighted by triangle area, over every triangle touching the same lattice
// edge, so a vertex shared between cells gets one smooth normal. A vertex
// whose sum vanishes falls back to the radial direction.
func Normals(s *Surface) []mgl64.Vec3 {
	acc := make(map[uint64]mgl64.Vec3, len(s.Edges)/2)

	for t := 0; t+2 < len(s.Positions); t += 3 {
		a, b, c := s.Positions[t], s.Positions[t+1], s.Positions[t+2]
		// |cross| is twice the area
		face := b.Sub(a).Cross(c.Sub(a))
		for k := t; k < t+3; k++ {
			acc[s.Edges[k]] = acc[s.Edges[k]].Add(face)
		}
	}

	normals := make([]mgl64.Vec3, len(s.Positions))
	for i, p := range s.Positions {
		n := acc[s.Edges[i]]
		if l := n.Len(); l > 1e-12 {
			normals[i] = n.Mul(1 / l)
			continue
		}
		normals[i] = radial(p)
	}
	return normals
}

func radial(p mgl64.Vec3) mgl64.Vec3 {
	l := p.Len()
	if l == 0 {
		return mgl64.Vec3{0, 1, 0}
	}
	return p.Mul(1 / l)
}

// Flatten packs vectors into an x,y,z float32 buffer.
func Flatten(vs []mgl64.Vec3) []float32 {
	out := make([]float32, 0, 3*len(vs))
	for _, v := range vs {
		out = append(out, float32(v[0]), float32(v[1]), float32(v[2]))
	}
	return out
}

// Bound returns a sphere around every vertex of a flat position buffer:
// the bounding-box centre and the largest distance from it. The radius is
// rounded up so float32 vertices never fall outside. An empty buffer gives
// the zero sphere.
func Bound(positions []float32) core.BoundingSphere {
	if len(positions) < 3 {
		return core.BoundingSphere{}
	}

	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i+2 < len(positions); i += 3 {
		for k := 0; k < 3; k++ {
			v := float64(positions[i+k])
			lo[k] = math.Min(lo[k], v)
			hi[k] = math.Max(hi[k], v)
		}
	}

	center32 := mgl32.Vec3{
		float32((lo[0] + hi[0]) / 2),
		float32((lo[1] + hi[1]) / 2),
		float32((lo[2] + hi[2]) / 2),
	}
	center := mgl64.Vec3{float64(center32[0]), float64(center32[1]), float64(center32[2])}

	var maxDist float64
	for i := 0; i+2 < len(positions); i += 3 {
		p := mgl64.Vec3{float64(positions[i]), float64(positions[i+1]), float64(positions[i+2])}
		maxDist = math.Max(maxDist, p.Sub(center).Len())
	}

	r := float32(maxDist)
	if float64(r) < maxDist {
		r = math.Nextafter32(r, float32(math.Inf(1)))
	}
	return core.BoundingSphere{Center: center32, Radius: r}
}
