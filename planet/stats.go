package planet

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"planetgenerator/core"
)

// Stats summarizes a generated mesh for logs and clients.
type Stats struct {
	Triangles    int             `json:"triangles"`
	Vertices     int             `json:"vertices"`
	MinRadius    float64         `json:"minRadius"`
	MaxRadius    float64         `json:"maxRadius"`
	LandFraction float64         `json:"landFraction"` // share of vertices above sea level
	Peak         core.Geographic `json:"peak"`
}

// Summarize measures m against the nominal radius and sea level of p.
func Summarize(m *core.GeneratedMesh, p core.PlanetParams) Stats {
	s := Stats{Triangles: m.TriangleCount(), Vertices: m.VertexCount()}
	if m.IsEmpty() {
		return s
	}

	s.MinRadius = math.Inf(1)
	var (
		land int
		peak mgl64.Vec3
	)
	for i := 0; i < s.Vertices; i++ {
		v := m.Vertex(i)
		c := mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
		r := c.Len()

		if r < s.MinRadius {
			s.MinRadius = r
		}
		if r > s.MaxRadius {
			s.MaxRadius = r
			peak = c
		}
		if r-p.Radius > p.SeaLevelWorld {
			land++
		}
	}

	s.LandFraction = float64(land) / float64(s.Vertices)
	s.Peak = core.CartesianToGeographic(peak, p.Radius)
	return s
}
