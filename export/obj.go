package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"planetgenerator/core"
)

// WriteOBJ writes m as a Wavefront OBJ file. Vertex colors use the common
// "v x y z r g b" extension; every triangle references its own three
// vertices and normals.
func WriteOBJ(w io.Writer, m *core.GeneratedMesh, comment string) error {
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("obj export: %d normal values for %d position values", len(m.Normals), len(m.Positions))
	}
	colors := m.Colors
	if len(colors) != len(m.Positions) {
		colors = nil
	}

	bw := bufio.NewWriter(w)

	if comment != "" {
		fmt.Fprintf(bw, "# %s\n", comment)
	}
	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())

	var line []byte
	writeTriple := func(prefix string, b []float32, i int, extra []float32) {
		line = append(line[:0], prefix...)
		for _, v := range b[3*i : 3*i+3] {
			line = append(line, ' ')
			line = strconv.AppendFloat(line, float64(v), 'g', -1, 32)
		}
		if extra != nil {
			for _, v := range extra[3*i : 3*i+3] {
				line = append(line, ' ')
				line = strconv.AppendFloat(line, float64(v), 'g', -1, 32)
			}
		}
		line = append(line, '\n')
		bw.Write(line)
	}

	n := m.VertexCount()
	for i := 0; i < n; i++ {
		writeTriple("v", m.Positions, i, colors)
	}
	for i := 0; i < n; i++ {
		writeTriple("vn", m.Normals, i, nil)
	}
	for t := 0; t < m.TriangleCount(); t++ {
		a := 3*t + 1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, a+1, a+1, a+2, a+2)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}
	return nil
}
