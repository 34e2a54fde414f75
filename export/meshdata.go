// Package export serializes generated meshes: the JSON payload streamed to
// browser renderers and Wavefront OBJ files for offline tools.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"planetgenerator/core"
	"planetgenerator/planet"
)

// MeshData is the JSON payload a renderer consumes. Positions, Normals and
// Colors are flat xyz/rgb triples, three vertices per triangle.
type MeshData struct {
	Type           string              `json:"type"`
	ID             string              `json:"id,omitempty"`
	Params         core.PlanetParams   `json:"params"`
	Positions      []float32           `json:"positions"`
	Normals        []float32           `json:"normals"`
	Colors         []float32           `json:"colors"`
	BoundingSphere core.BoundingSphere `json:"boundingSphere"`
	Triangles      int                 `json:"triangles"`
	Stats          planet.Stats        `json:"stats"`
	Shells         core.Shells         `json:"shells"`
}

// NewMeshData wraps m with its parameters, statistics and shell radii. The
// buffers are shared with m, not copied.
func NewMeshData(m *core.GeneratedMesh, p core.PlanetParams, atmosphereThickness float64) MeshData {
	return MeshData{
		Type:           "mesh",
		Params:         p,
		Positions:      nonNil(m.Positions),
		Normals:        nonNil(m.Normals),
		Colors:         nonNil(m.Colors),
		BoundingSphere: m.BoundingSphere,
		Triangles:      m.TriangleCount(),
		Stats:          planet.Summarize(m, p),
		Shells:         core.ShellsFor(p, atmosphereThickness),
	}
}

// Mesh rebuilds the mesh carried by d.
func (d MeshData) Mesh() *core.GeneratedMesh {
	return &core.GeneratedMesh{
		Positions:      d.Positions,
		Normals:        d.Normals,
		Colors:         d.Colors,
		BoundingSphere: d.BoundingSphere,
	}
}

// empty buffers encode as [] rather than null
func nonNil(b []float32) []float32 {
	if b == nil {
		return []float32{}
	}
	return b
}

func WriteJSON(w io.Writer, d MeshData) error {
	if err := json.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("encoding mesh json: %w", err)
	}
	return nil
}

func ReadJSON(r io.Reader) (MeshData, error) {
	var d MeshData
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return MeshData{}, fmt.Errorf("decoding mesh json: %w", err)
	}
	return d, nil
}
